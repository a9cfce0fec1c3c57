package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/sdpwa/config"
	"github.com/rulego/sdpwa/errs"
)

func newManager(t *testing.T, size, stride time.Duration, originMs int64) *Manager {
	t.Helper()
	m, err := NewManager(config.Window{Size: size, Stride: stride, OriginMs: originMs})
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsStrideGreaterThanSize(t *testing.T) {
	_, err := NewManager(config.Window{Size: time.Second, Stride: 2 * time.Second})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestTumblingSingleWindow(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	ids := m.WindowsCovering(100)
	require.Len(t, ids, 1)
	assert.Equal(t, ID{StartMs: 0, EndMs: 1000}, ids[0])
}

func TestTumblingHalfOpenBoundary(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	ids := m.WindowsCovering(1000)
	require.Len(t, ids, 1)
	assert.Equal(t, ID{StartMs: 1000, EndMs: 2000}, ids[0], "ts==end belongs to the next window")
}

func TestSlidingCoverage(t *testing.T) {
	m := newManager(t, time.Second, 500*time.Millisecond, 0)
	ids := m.WindowsCovering(600)
	require.Len(t, ids, 2)
	assert.ElementsMatch(t, []ID{{0, 1000}, {500, 1500}}, ids)
}

func TestSlidingCoverageCount(t *testing.T) {
	m := newManager(t, 1000*time.Millisecond, 300*time.Millisecond, 0)
	ids := m.WindowsCovering(950)
	// ceil(size/stride) = ceil(1000/300) = 4
	assert.Len(t, ids, 4)
}

func TestAdmitOpensWindowsAndTracksThem(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	ids, err := m.Admit(100)
	require.NoError(t, err)
	assert.Equal(t, []ID{{0, 1000}}, ids)
	assert.ElementsMatch(t, []ID{{0, 1000}}, m.OpenWindows())
}

func TestAdmitRejectsLateEvent(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	_, err := m.Admit(1500) // opens [1000,2000)
	require.NoError(t, err)

	_, err = m.Admit(100) // precedes oldest open window start (1000)
	require.Error(t, err)
	assert.True(t, errs.IsLateEvent(err))
	assert.ElementsMatch(t, []ID{{1000, 2000}}, m.OpenWindows(), "rejected event must not mutate open set")
}

func TestSealUpToOrdering(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	_, _ = m.Admit(100)  // [0,1000)
	_, _ = m.Admit(1500) // [1000,2000)
	_, _ = m.Admit(2500) // [2000,3000)

	sealed := m.SealUpTo(2000)
	require.Len(t, sealed, 2)
	assert.Equal(t, ID{0, 1000}, sealed[0])
	assert.Equal(t, ID{1000, 2000}, sealed[1])

	// seal_up_to must not remove windows from the open set by itself.
	assert.Len(t, m.OpenWindows(), 3)
}

func TestRetireRemovesFromOpenSet(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	_, _ = m.Admit(100)
	sealed := m.SealUpTo(1000)
	require.Len(t, sealed, 1)
	m.Retire(sealed[0])
	assert.Empty(t, m.OpenWindows())
}

func TestNeverReopensARetiredWindow(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	_, _ = m.Admit(100) // [0,1000)
	sealed := m.SealUpTo(1000)
	require.Len(t, sealed, 1)
	m.Retire(sealed[0])

	_, _ = m.Admit(1500) // opens [1000,2000), oldest open start now 1000

	_, err := m.Admit(100) // would belong to the retired [0,1000) window
	require.Error(t, err)
	assert.True(t, errs.IsLateEvent(err))
}

func TestNeverReopensAfterDrainToEmpty(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 0)
	_, err := m.Admit(500) // [0,1000)
	require.NoError(t, err)
	sealed := m.SealUpTo(1000)
	require.Len(t, sealed, 1)
	m.Retire(sealed[0])
	require.Empty(t, m.OpenWindows())

	// The open set is empty, but the retired window must stay closed.
	_, err = m.Admit(500)
	require.Error(t, err)
	assert.True(t, errs.IsLateEvent(err))
	assert.Empty(t, m.OpenWindows())
}

func TestSlidingAdmitSkipsRetiredWindows(t *testing.T) {
	m := newManager(t, time.Second, 500*time.Millisecond, 0)
	_, err := m.Admit(600) // opens [0,1000) and [500,1500)
	require.NoError(t, err)
	sealed := m.SealUpTo(1000)
	require.Len(t, sealed, 1)
	m.Retire(sealed[0]) // retires [0,1000)

	// ts=700 still covers [0,1000) and [500,1500); only the open window
	// may admit it.
	ids, err := m.Admit(700)
	require.NoError(t, err)
	assert.Equal(t, []ID{{500, 1500}}, ids)
	assert.ElementsMatch(t, []ID{{500, 1500}}, m.OpenWindows())
}

func TestOriginOffsetsGrid(t *testing.T) {
	m := newManager(t, time.Second, time.Second, 250)
	ids := m.WindowsCovering(1100)
	require.Len(t, ids, 1)
	assert.Equal(t, ID{StartMs: 250, EndMs: 1250}, ids[0])
}
