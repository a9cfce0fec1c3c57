package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/sdpwa/errs"
)

func TestNormalizeNestedSnakeCase(t *testing.T) {
	raw := map[string]interface{}{
		"dp": map[string]interface{}{
			"epsilon_count":          1.0,
			"epsilon_sum":            1.0,
			"delta_per_window":       1e-5,
			"ledger_delta_tolerance": 0.0,
			"target_delta":           1e-4,
		},
		"bounds": map[string]interface{}{
			"max_contributions_per_window": 1,
			"min_value":                    -1.0,
			"max_value":                    1.0,
		},
		"window": map[string]interface{}{
			"window_size":   "1000ms",
			"window_stride": "1000ms",
		},
	}
	c, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.Window.Size)
	assert.Equal(t, uint64(1), c.Bounds.MaxContributionsPerWindow)
}

func TestNormalizeCamelCaseAndNumericDuration(t *testing.T) {
	raw := map[string]interface{}{
		"epsilonCount":               1.0,
		"epsilonSum":                 1.0,
		"deltaPerWindow":             1e-5,
		"ledgerDeltaTolerance":       0.0,
		"targetDelta":                1e-4,
		"maxContributionsPerWindow":  1,
		"minValue":                   -1.0,
		"maxValue":                   1.0,
		"windowSize":                 1000,
		"windowStride":               1000,
	}
	c, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.Window.Size)
	assert.Equal(t, time.Second, c.Window.Stride)
}

func TestNormalizeNestedCamelCase(t *testing.T) {
	raw := map[string]interface{}{
		"dp": map[string]interface{}{
			"epsilonCount":         1.0,
			"epsilonSum":           1.0,
			"deltaPerWindow":       1e-5,
			"ledgerDeltaTolerance": 0.0,
			"targetDelta":          1e-4,
		},
		"bounds": map[string]interface{}{
			"maxContributionsPerWindow": 2,
			"minValue":                  -1.0,
			"maxValue":                  1.0,
		},
		"window": map[string]interface{}{
			"windowSize":   "500ms",
			"windowStride": "500ms",
		},
	}
	c, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, c.Window.Size)
	assert.Equal(t, uint64(2), c.Bounds.MaxContributionsPerWindow)
}

func TestNormalizeRejectsUnknownField(t *testing.T) {
	raw := map[string]interface{}{"totallyUnknownField": 1}
	_, err := Normalize(raw)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestNormalizeRejectsMissingField(t *testing.T) {
	raw := map[string]interface{}{
		"epsilonCount": 1.0,
	}
	_, err := Normalize(raw)
	require.Error(t, err)
}
