package rpwarehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

func TestWarehousingLifecycle(t *testing.T) {
	repo := NewWarehousingRepository(dbtest.Open(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	unqualified := &etwarehouse.Record{
		ID: "w1", WarehousingNo: "WH1", RequestID: "req-1", OrderID: "PO-1", OrderNo: "PO1", BundleID: "B-1",
		Type: etwarehouse.TypeQualityScan, Outcome: etwarehouse.OutcomeUnqualified, Quantity: 10, Unqualified: 10,
		QualityStatus: etwarehouse.QualityUnqualified, DefectCategory: "跳线", Disposition: etwarehouse.DispositionRepair,
		CreatedAt: base,
	}
	repaired := &etwarehouse.Record{
		ID: "w2", WarehousingNo: "WH2", RequestID: "req-2", OrderID: "PO-1", OrderNo: "PO1", BundleID: "B-1",
		Type: etwarehouse.TypeQualityScan, Outcome: etwarehouse.OutcomeRepaired, Quantity: 40, Qualified: 40,
		QualityStatus: etwarehouse.QualityQualified, CreatedAt: base.Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, unqualified))
	require.NoError(t, repo.Create(ctx, repaired))

	history, err := repo.ListByBundle(ctx, "B-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, etwarehouse.DispositionRepair, history[0].Disposition)
	assert.Equal(t, 40, history.QualifiedTotal())
	assert.False(t, history.BlockedByRepair())

	n, err := repo.DeleteByRequestIDs(ctx, []string{"req-2", "req-404"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	history, err = repo.ListByOrder(ctx, "PO-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history.BlockedByRepair())

	n, err = repo.DeleteByRequestIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
