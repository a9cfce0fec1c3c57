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

// Package window implements the tumbling/sliding window scheduler: it
// maps event timestamps to the set of windows they contribute to, and
// tracks which open windows have sealed and are ready for release.
package window

import "fmt"

// ID identifies a window by its half-open interval [StartMs, EndMs).
// Windows are addressed by coordinates, never by pointer, so they can be
// carried by value into ledger entries and release snapshots.
type ID struct {
	StartMs int64
	EndMs   int64
}

// String renders the interval the way it appears in diagnostics.
func (w ID) String() string {
	return fmt.Sprintf("[%d,%d)", w.StartMs, w.EndMs)
}

// Contains reports whether tsMs falls in the window's half-open interval.
func (w ID) Contains(tsMs int64) bool {
	return tsMs >= w.StartMs && tsMs < w.EndMs
}

// byEndThenStart orders window IDs the way seal_up_to must emit them:
// ascending end, then ascending start.
type byEndThenStart []ID

func (s byEndThenStart) Len() int      { return len(s) }
func (s byEndThenStart) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byEndThenStart) Less(i, j int) bool {
	if s[i].EndMs != s[j].EndMs {
		return s[i].EndMs < s[j].EndMs
	}
	return s[i].StartMs < s[j].StartMs
}
