package etstage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusNotStarted, StatusFor(0, 100))
	assert.Equal(t, StatusInProgress, StatusFor(40, 100))
	assert.Equal(t, StatusCompleted, StatusFor(100, 100))
	assert.Equal(t, StatusCompleted, StatusFor(120, 100))
}

func TestOrderedIndex(t *testing.T) {
	assert.Equal(t, 0, StageProcurement.Index())
	assert.Equal(t, len(Ordered)-1, StageWarehousing.Index())
	assert.False(t, Stage("上领").IsFixed())
	assert.Equal(t, "车缝", StageSewing.Label())
}
