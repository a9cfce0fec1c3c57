package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/sdpwa/ledger"
)

func buildCleanSnapshot(t *testing.T) ledger.Snapshot {
	t.Helper()
	l := ledger.New(2e-4, 0, 0)
	for i := 0; i < 2; i++ {
		_, err := l.Append(ledger.Entry{
			WindowStartMs: int64(i * 1000), WindowEndMs: int64((i + 1) * 1000),
			Epsilons: []float64{1, 1}, Delta: 1e-4,
		})
		require.NoError(t, err)
	}
	return l.Snapshot()
}

func TestVerifyAgreesWithCleanSnapshot(t *testing.T) {
	snap := buildCleanSnapshot(t)
	report, err := New(0, 0).Verify(snap)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestSerializeDeserializeRoundTripAudit(t *testing.T) {
	snap := buildCleanSnapshot(t)
	data, err := snap.Encode()
	require.NoError(t, err)

	decoded, err := ledger.Decode(data)
	require.NoError(t, err)

	report, err := New(0, 0).Verify(decoded)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestVerifyDetectsTamperedCumulativeEpsilon(t *testing.T) {
	snap := buildCleanSnapshot(t)
	snap.CumulativeEpsilon += 1000

	report, err := New(0, 0).Verify(snap)
	require.Error(t, err)
	require.False(t, report.Clean())
	assert.Contains(t, report.Mismatches[0], "cumulative epsilon mismatch")
}

func TestVerifyDetectsDeltaBudgetExceeded(t *testing.T) {
	snap := buildCleanSnapshot(t)
	snap.TargetDelta = 1e-5 // far below the 2e-4 actually consumed

	report, err := New(0, 0).Verify(snap)
	require.Error(t, err)
	found := false
	for _, m := range report.Mismatches {
		if strings.Contains(m, "cumulative delta") {
			found = true
		}
	}
	assert.True(t, found, "expected a cumulative delta mismatch, got %v", report.Mismatches)
}

func TestVerifyDetectsOutOfOrderEntries(t *testing.T) {
	snap := buildCleanSnapshot(t)
	snap.Entries[0], snap.Entries[1] = snap.Entries[1], snap.Entries[0]

	report, err := New(0, 0).Verify(snap)
	require.Error(t, err)
	found := false
	for _, m := range report.Mismatches {
		if strings.Contains(m, "out of order") {
			found = true
		}
	}
	assert.True(t, found, "expected an out-of-order mismatch, got %v", report.Mismatches)
}

func TestVerifyDetectsEpsilonCapExceeded(t *testing.T) {
	snap := buildCleanSnapshot(t)

	report, err := New(0, 0.5).Verify(snap)
	require.Error(t, err)
	found := false
	for _, m := range report.Mismatches {
		if strings.Contains(m, "exceeds declared cap") {
			found = true
		}
	}
	assert.True(t, found, "expected an epsilon cap mismatch, got %v", report.Mismatches)
}
