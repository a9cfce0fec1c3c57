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

// Package accumulator holds the exact, pre-noise per-window count and
// sum. Summation is Kahan-compensated so accumulated rounding error is
// bounded independent of ingest order, and count accumulation saturates
// at math.MaxUint64 instead of wrapping.
package accumulator

import (
	"math"

	"github.com/rulego/sdpwa/window"
)

// windowState is the exact running aggregate for one open window.
type windowState struct {
	count uint64
	sum   float64
	// comp is the Kahan compensation term for sum.
	comp float64
}

// RawAccumulator maps window IDs to their exact running {count, sum}.
type RawAccumulator struct {
	windows map[window.ID]*windowState
}

// New builds an empty RawAccumulator.
func New() *RawAccumulator {
	return &RawAccumulator{windows: make(map[window.ID]*windowState)}
}

// Add folds a single admitted (already clamped) contribution into the
// window's running count and sum.
func (a *RawAccumulator) Add(id window.ID, value float64) {
	s, ok := a.windows[id]
	if !ok {
		s = &windowState{}
		a.windows[id] = s
	}
	if s.count < math.MaxUint64 {
		s.count++
	}
	kahanAdd(s, value)
}

// Snapshot returns the current exact {count, sum} for a window. ok is
// false if the window has no recorded contributions.
func (a *RawAccumulator) Snapshot(id window.ID) (count uint64, sum float64, ok bool) {
	s, exists := a.windows[id]
	if !exists {
		return 0, 0, false
	}
	return s.count, s.sum, true
}

// Retire removes a window's state. Call after its release has been
// fully committed; retired windows free their memory immediately.
func (a *RawAccumulator) Retire(id window.ID) {
	delete(a.windows, id)
}

// kahanAdd performs one step of Kahan compensated summation:
// https://en.wikipedia.org/wiki/Kahan_summation_algorithm
func kahanAdd(s *windowState, value float64) {
	y := value - s.comp
	t := s.sum + y
	s.comp = (t - s.sum) - y
	s.sum = t
}
