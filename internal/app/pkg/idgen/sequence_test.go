package idgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberGeneratorSequence(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	g := NewNumberGenerator(7)
	g.now = func() time.Time { return fixed }

	first := g.Next(PrefixWarehousing)
	second := g.Next(PrefixWarehousing)

	assert.Equal(t, "WH2026101908300007000", first)
	assert.Equal(t, "WH2026101908300007001", second)
}

func TestNumberGeneratorUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		n := NextNumber(PrefixQuality)
		assert.True(t, strings.HasPrefix(n, PrefixQuality))
		_, dup := seen[n]
		assert.False(t, dup, n)
		seen[n] = struct{}{}
	}
}

func TestNewNumberGeneratorClampsMachineID(t *testing.T) {
	assert.Equal(t, int64(0), NewNumberGenerator(300).machineID)
}
