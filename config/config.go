/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config holds the typed configuration object SDPWA aggregators
// are constructed from, plus the dynamic-typed boundary normalizer used
// when a configuration arrives across a host or WASM binding.
package config

import (
	"math"
	"time"

	"github.com/rulego/sdpwa/errs"
)

// DP holds the differential-privacy budget parameters.
type DP struct {
	EpsilonCount   float64 // > 0
	EpsilonSum     float64 // > 0
	DeltaPerWindow float64 // >= 0, release delta consumed per window
	LedgerDeltaTol float64 // >= 0, fractional tolerance over TargetDelta
	TargetDelta    float64 // >= 0, overall delta budget
	EpsilonCap     float64 // optional, 0 disables; caller-declared cumulative epsilon ceiling
}

// Bounds holds the per-identity contribution bounding parameters.
type Bounds struct {
	MaxContributionsPerWindow uint64 // >= 1
	MinValue                  float64
	MaxValue                  float64 // MinValue <= MaxValue, both finite
}

// Window holds the window-manager parameters.
type Window struct {
	Size     time.Duration // > 0
	Stride   time.Duration // > 0, <= Size
	OriginMs int64         // >= 0, default 0
}

// Config is the fully validated, strongly typed aggregator configuration.
type Config struct {
	DP     DP
	Bounds Bounds
	Window Window
}

// Validate checks every field constraint, returning the first
// violation found wrapped as errs.KindInvalidConfig.
func (c Config) Validate() error {
	if !(c.DP.EpsilonCount > 0) {
		return errs.New(errs.KindInvalidConfig, "dp.epsilon_count must be > 0, got %v", c.DP.EpsilonCount)
	}
	if !(c.DP.EpsilonSum > 0) {
		return errs.New(errs.KindInvalidConfig, "dp.epsilon_sum must be > 0, got %v", c.DP.EpsilonSum)
	}
	if c.DP.DeltaPerWindow < 0 || math.IsNaN(c.DP.DeltaPerWindow) || math.IsInf(c.DP.DeltaPerWindow, 0) {
		return errs.New(errs.KindInvalidConfig, "dp.delta_per_window must be finite and >= 0, got %v", c.DP.DeltaPerWindow)
	}
	if c.DP.LedgerDeltaTol < 0 {
		return errs.New(errs.KindInvalidConfig, "dp.ledger_delta_tolerance must be >= 0, got %v", c.DP.LedgerDeltaTol)
	}
	if c.DP.TargetDelta < 0 {
		return errs.New(errs.KindInvalidConfig, "dp.target_delta must be >= 0, got %v", c.DP.TargetDelta)
	}
	if c.DP.EpsilonCap < 0 {
		return errs.New(errs.KindInvalidConfig, "dp.epsilon_cap must be >= 0 (0 disables), got %v", c.DP.EpsilonCap)
	}
	if c.Bounds.MaxContributionsPerWindow < 1 {
		return errs.New(errs.KindInvalidConfig, "bounds.max_contributions_per_window must be >= 1, got %v", c.Bounds.MaxContributionsPerWindow)
	}
	if math.IsNaN(c.Bounds.MinValue) || math.IsInf(c.Bounds.MinValue, 0) {
		return errs.New(errs.KindInvalidConfig, "bounds.min_value must be finite")
	}
	if math.IsNaN(c.Bounds.MaxValue) || math.IsInf(c.Bounds.MaxValue, 0) {
		return errs.New(errs.KindInvalidConfig, "bounds.max_value must be finite")
	}
	if c.Bounds.MinValue > c.Bounds.MaxValue {
		return errs.New(errs.KindInvalidConfig, "bounds.min_value (%v) must be <= bounds.max_value (%v)", c.Bounds.MinValue, c.Bounds.MaxValue)
	}
	if c.Window.Size <= 0 {
		return errs.New(errs.KindInvalidConfig, "window.window_size must be > 0, got %v", c.Window.Size)
	}
	if c.Window.Stride <= 0 {
		return errs.New(errs.KindInvalidConfig, "window.window_stride must be > 0, got %v", c.Window.Stride)
	}
	if c.Window.Stride > c.Window.Size {
		return errs.New(errs.KindInvalidConfig, "window.window_stride (%v) must be <= window.window_size (%v)", c.Window.Stride, c.Window.Size)
	}
	if c.Window.OriginMs < 0 {
		return errs.New(errs.KindInvalidConfig, "window.origin_ms must be >= 0, got %v", c.Window.OriginMs)
	}
	return nil
}

// Tumbling reports whether the window policy is tumbling (stride == size).
func (c Config) Tumbling() bool {
	return c.Window.Stride == c.Window.Size
}

// SensitivityCount is the per-window local sensitivity of the count metric.
func (c Config) SensitivityCount() float64 {
	return float64(c.Bounds.MaxContributionsPerWindow)
}

// SensitivitySum is the per-window local sensitivity of the sum metric.
func (c Config) SensitivitySum() float64 {
	bound := math.Abs(c.Bounds.MinValue)
	if abs := math.Abs(c.Bounds.MaxValue); abs > bound {
		bound = abs
	}
	return float64(c.Bounds.MaxContributionsPerWindow) * bound
}
