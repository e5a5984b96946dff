package rpbundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etbundle"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

func TestBundleLookups(t *testing.T) {
	repo := NewBundleRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, n := range []int{3, 1, 2} {
		b, err := etbundle.NewBundle(
			"B-"+string(rune('0'+n)), "PO-1", "PO20260001", n, "红", "M", 50,
			"PO20260001-红-M-"+string(rune('0'+n)),
		)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, b))
	}

	got, err := repo.GetByScanCode(ctx, "PO20260001-红-M-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "B-2", got.ID)
	assert.Equal(t, 50, got.Quantity)

	got, err = repo.GetByOrderAttrs(ctx, "PO20260001", "红", "M")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.BundleNo)

	got, err = repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := repo.ListByOrder(ctx, "PO-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{list[0].BundleNo, list[1].BundleNo, list[2].BundleNo})
}
