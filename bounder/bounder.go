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

// Package bounder enforces per-(window, identity) local sensitivity
// before any value reaches the raw accumulator: it clamps event values
// into the configured range and caps the number of contributions a
// single identity may make to a single window.
package bounder

import (
	"github.com/rulego/sdpwa/config"
	"github.com/rulego/sdpwa/window"
)

// ContributionBounder admits or rejects per-identity contributions to a
// window, tracking a contribution counter per (window, identity) pair.
// Memory is bounded by O(open_windows * distinct_identities_per_window);
// Retire must be called once a window is released so its counters free
// immediately.
type ContributionBounder struct {
	maxPerWindow uint64
	minValue     float64
	maxValue     float64

	// counts[windowID][identity] is the number of contributions admitted
	// so far for that identity in that window.
	counts map[window.ID]map[string]uint64
}

// New builds a bounder from the bounds portion of a validated Config.
func New(cfg config.Bounds) *ContributionBounder {
	return &ContributionBounder{
		maxPerWindow: cfg.MaxContributionsPerWindow,
		minValue:     cfg.MinValue,
		maxValue:     cfg.MaxValue,
		counts:       make(map[window.ID]map[string]uint64),
	}
}

// Admit clamps value into [minValue, maxValue] and reports whether the
// identity's running contribution count for the window would exceed
// maxPerWindow. On success it increments the counter and returns the
// clamped value with ok=true. On a capped contribution it does NOT
// increment the counter further and returns ok=false; the caller must
// not apply the returned value to the raw accumulator.
func (b *ContributionBounder) Admit(id window.ID, identity string, value float64) (clamped float64, ok bool) {
	clamped = clamp(value, b.minValue, b.maxValue)

	byIdentity, exists := b.counts[id]
	if !exists {
		byIdentity = make(map[string]uint64)
		b.counts[id] = byIdentity
	}

	if byIdentity[identity] >= b.maxPerWindow {
		return clamped, false
	}
	byIdentity[identity]++
	return clamped, true
}

// Retire drops all per-identity counters for a window. Call once the
// window has been released and its raw state retired.
func (b *ContributionBounder) Retire(id window.ID) {
	delete(b.counts, id)
}

// ContributionsOf returns the current contribution count for an
// identity within a window, for diagnostics and tests.
func (b *ContributionBounder) ContributionsOf(id window.ID, identity string) uint64 {
	byIdentity, exists := b.counts[id]
	if !exists {
		return 0
	}
	return byIdentity[identity]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
