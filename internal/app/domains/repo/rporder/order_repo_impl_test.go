package rporder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

func TestOrderProgressRoundTrip(t *testing.T) {
	repo := NewOrderRepository(dbtest.Open(t))
	ctx := context.Background()

	order, err := etorder.NewOrder("PO-1", "PO20260001", "ST-01", 100)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))

	progress := &etorder.Progress{
		OrderID:      "PO-1",
		Percent:      35,
		Status:       etorder.StatusProduction,
		CurrentStage: etstage.StageSewing.Label(),
		Stages: []etorder.StageProgress{
			{Stage: etstage.StageCutting, Label: "裁剪", Done: 100, Weight: 1, Status: etstage.StatusCompleted, Percent: 100},
			{Stage: etstage.StageSewing, Label: "车缝", Done: 50, Weight: 1, Status: etstage.StatusInProgress, Percent: 50},
		},
		ComputedAt: time.Now(),
	}
	require.NoError(t, repo.UpdateProgress(ctx, progress))

	got, err := repo.GetByOrderNo(ctx, "PO20260001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 35, got.ProgressPercent)
	assert.Equal(t, etorder.StatusProduction, got.Status)
	assert.Equal(t, "车缝", got.CurrentStage)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, etstage.StatusInProgress, got.Stages[1].Status)

	list, err := repo.ListByStyle(ctx, "ST-01")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.UpdateProgress(ctx, &etorder.Progress{OrderID: "nope", ComputedAt: time.Now()}))
}
