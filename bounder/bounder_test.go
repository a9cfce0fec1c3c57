package bounder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulego/sdpwa/config"
	"github.com/rulego/sdpwa/window"
)

var w0 = window.ID{StartMs: 0, EndMs: 1000}

func TestClampsIntoRange(t *testing.T) {
	b := New(config.Bounds{MaxContributionsPerWindow: 10, MinValue: 0, MaxValue: 1})
	clamped, ok := b.Admit(w0, "a", 5.0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, clamped)
}

func TestClampsBelowMin(t *testing.T) {
	b := New(config.Bounds{MaxContributionsPerWindow: 10, MinValue: -1, MaxValue: 1})
	clamped, ok := b.Admit(w0, "a", -5.0)
	assert.True(t, ok)
	assert.Equal(t, -1.0, clamped)
}

func TestCapsContributionsPerIdentity(t *testing.T) {
	b := New(config.Bounds{MaxContributionsPerWindow: 1, MinValue: -1, MaxValue: 1})
	_, ok1 := b.Admit(w0, "a", 1.0)
	_, ok2 := b.Admit(w0, "a", 1.0)
	assert.True(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, uint64(1), b.ContributionsOf(w0, "a"))
}

func TestCountersAreIndependentPerWindowAndIdentity(t *testing.T) {
	b := New(config.Bounds{MaxContributionsPerWindow: 1, MinValue: -1, MaxValue: 1})
	w1 := window.ID{StartMs: 1000, EndMs: 2000}

	_, okA := b.Admit(w0, "a", 1.0)
	_, okB := b.Admit(w0, "b", 1.0)
	_, okAOtherWindow := b.Admit(w1, "a", 1.0)

	assert.True(t, okA)
	assert.True(t, okB)
	assert.True(t, okAOtherWindow)
}

func TestRetireFreesCounters(t *testing.T) {
	b := New(config.Bounds{MaxContributionsPerWindow: 1, MinValue: -1, MaxValue: 1})
	b.Admit(w0, "a", 1.0)
	b.Retire(w0)
	assert.Equal(t, uint64(0), b.ContributionsOf(w0, "a"))
}
