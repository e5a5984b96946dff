package mdprogress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/repo/rpscan"
)

func equalWeights() map[etstage.Stage]int {
	w := make(map[etstage.Stage]int)
	for _, st := range etstage.Ordered {
		w[st] = 1
	}
	return w
}

func snapshot(qty int, tallies ...rpscan.StageTally) Snapshot {
	return Snapshot{
		Order:      &etorder.Order{ID: "PO-1", Quantity: qty, Status: etorder.StatusPending},
		Stages:     etstage.Ordered,
		Weights:    equalWeights(),
		Tallies:    tallies,
		ComputedAt: time.Now(),
	}
}

func tally(stage etstage.Stage, bundleID, process string, qty int) rpscan.StageTally {
	return rpscan.StageTally{ProgressStage: string(stage), BundleID: bundleID, ProcessCode: process, Quantity: qty}
}

func stageOfProgress(t *testing.T, p *etorder.Progress, st etstage.Stage) etorder.StageProgress {
	for _, sp := range p.Stages {
		if sp.Stage == st {
			return sp
		}
	}
	require.FailNow(t, "stage missing", string(st))
	return etorder.StageProgress{}
}

func TestComputeQualityScenario(t *testing.T) {
	s := snapshot(50,
		tally(etstage.StageSewing, "B-1", "上领", 50),
		tally(etstage.StageSewing, "B-1", "上袖", 50),
		tally(etstage.StageTail, "B-1", "quality_receive", 50),
		tally(etstage.StageTail, "B-1", "quality_inspect", 50),
		tally(etstage.StageTail, "B-1", "quality_confirm", 50),
	)
	s.CutTotal = 50
	s.Warehoused = 50

	p := Compute(s)
	assert.Equal(t, etstage.StatusCompleted, stageOfProgress(t, p, etstage.StageSewing).Status)
	assert.Equal(t, 50, stageOfProgress(t, p, etstage.StageSewing).Done)
	assert.Equal(t, etstage.StatusCompleted, stageOfProgress(t, p, etstage.StageTail).Status)
	assert.Equal(t, etstage.StatusCompleted, stageOfProgress(t, p, etstage.StageWarehousing).Status)
	assert.Equal(t, 100, p.Percent)
	assert.Equal(t, etorder.StatusCompleted, p.Status)
}

func TestComputePerBundleMaxThenSum(t *testing.T) {
	p := Compute(snapshot(100,
		tally(etstage.StageSewing, "B-1", "上领", 30),
		tally(etstage.StageSewing, "B-1", "上袖", 20),
		tally(etstage.StageSewing, "B-2", "上领", 10),
		tally(etstage.StageSewing, "", "上领", 5),
		tally(etstage.StageSewing, "", "上袖", 5),
	))
	assert.Equal(t, 50, stageOfProgress(t, p, etstage.StageSewing).Done)
	assert.Equal(t, etstage.StatusInProgress, stageOfProgress(t, p, etstage.StageSewing).Status)
	assert.Equal(t, etorder.StatusProduction, p.Status)
}

func TestComputePercentage(t *testing.T) {
	s := snapshot(100, tally(etstage.StageSewing, "B-1", "上领", 50))
	s.CutTotal = 100

	p := Compute(s)
	// 采购、裁剪、二次工艺 + 车缝一半 = 3.5 / 6
	assert.Equal(t, 58, p.Percent)
	assert.Equal(t, etstage.StageSewing.Label(), p.CurrentStage)
	assert.Equal(t, etstage.StatusCompleted, stageOfProgress(t, p, etstage.StageCutting).Status)
	assert.Equal(t, etstage.StatusNotStarted, stageOfProgress(t, p, etstage.StageSecondaryProcess).Status)
}

func TestComputeCapsBeforeWarehousing(t *testing.T) {
	s := snapshot(100, tally(etstage.StageTail, "B-1", "包装", 100))
	s.Weights = map[etstage.Stage]int{etstage.StageTail: 1}

	p := Compute(s)
	assert.Equal(t, 99, p.Percent)
	assert.Equal(t, etorder.StatusProduction, p.Status)
}

func TestComputeNothingScanned(t *testing.T) {
	p := Compute(snapshot(100))
	assert.Equal(t, 0, p.Percent)
	assert.Equal(t, etorder.StatusPending, p.Status)
	assert.Len(t, p.Stages, len(etstage.Ordered))
	assert.Empty(t, p.CurrentStage)
}

func TestComputeProcurementFromMaterial(t *testing.T) {
	s := snapshot(100)
	s.Order.MaterialArrivalRate = 50
	p := Compute(s)
	assert.Equal(t, 50, stageOfProgress(t, p, etstage.StageProcurement).Done)
	assert.Equal(t, 8, p.Percent)
}

func TestComputeMapsLegacyStageNames(t *testing.T) {
	p := Compute(snapshot(100, rpscan.StageTally{ProgressStage: "缝制", BundleID: "B-1", Quantity: 40}))
	assert.Equal(t, 40, stageOfProgress(t, p, etstage.StageSewing).Done)
}
