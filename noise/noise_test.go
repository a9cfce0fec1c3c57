package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptySeed(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestDrawIsDeterministicAcrossInstances(t *testing.T) {
	e1, err := New([]byte("seed-1"))
	require.NoError(t, err)
	e2, err := New([]byte("seed-1"))
	require.NoError(t, err)

	v1, err := e1.Draw(1000, "count", 2.0)
	require.NoError(t, err)
	v2, err := e2.Draw(1000, "count", 2.0)
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "identical (seed, window, metric, scale) must draw bit-identical noise")
}

func TestDrawDiffersByMetricLabel(t *testing.T) {
	e, err := New([]byte("seed-1"))
	require.NoError(t, err)

	count, err := e.Draw(1000, "count", 2.0)
	require.NoError(t, err)
	sum, err := e.Draw(1000, "sum", 2.0)
	require.NoError(t, err)

	assert.NotEqual(t, count, sum)
}

func TestDrawDiffersByWindowStart(t *testing.T) {
	e, err := New([]byte("seed-1"))
	require.NoError(t, err)

	a, err := e.Draw(1000, "count", 2.0)
	require.NoError(t, err)
	b, err := e.Draw(2000, "count", 2.0)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDrawDiffersBySeed(t *testing.T) {
	e1, _ := New([]byte("seed-1"))
	e2, _ := New([]byte("seed-2"))

	a, err := e1.Draw(1000, "count", 2.0)
	require.NoError(t, err)
	b, err := e2.Draw(1000, "count", 2.0)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDrawRejectsNonPositiveScale(t *testing.T) {
	e, _ := New([]byte("seed-1"))
	_, err := e.Draw(1000, "count", 0)
	require.Error(t, err)
}

// TestDrawDistributionIsCentredAndScaled is a coarse sanity check, not a
// full Kolmogorov-Smirnov test: over many independent seeds the sample
// mean of a Laplace(0, scale) draw should be close to 0 and the sample
// variance close to 2*scale^2.
func TestDrawDistributionIsCentredAndScaled(t *testing.T) {
	const scale = 3.0
	const n = 4000

	var sum, sumSq float64
	for i := 0; i < n; i++ {
		e, err := New([]byte{byte(i), byte(i >> 8), byte(i >> 16), 7})
		require.NoError(t, err)
		v, err := e.Draw(int64(i), "count", scale)
		require.NoError(t, err)
		sum += v
		sumSq += v * v
	}

	mean := sum / n
	variance := sumSq/n - mean*mean
	expectedVariance := 2 * scale * scale

	assert.InDelta(t, 0, mean, 0.6, "sample mean should be near 0")
	assert.InDelta(t, expectedVariance, variance, expectedVariance*0.35, "sample variance should track 2*scale^2")
}

func TestUniformSignedStaysInRange(t *testing.T) {
	u := uniformSigned(1<<63, 0)
	assert.True(t, u >= -0.5 && u < 0.5)
	u = uniformSigned(math.MaxUint64, math.MaxUint64)
	assert.True(t, u >= -0.5 && u < 0.5)
}
