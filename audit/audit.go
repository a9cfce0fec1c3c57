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

// Package audit independently re-derives a ledger.Snapshot's privacy
// accounting and reports any disagreement. An Auditor never trusts the
// snapshot's own CumulativeEpsilon field: it recomputes cumulative
// epsilon from Entries with the same composition function the Ledger
// itself uses, so the two can never silently drift apart without
// detection.
package audit

import (
	"fmt"
	"math"

	"github.com/rulego/sdpwa/errs"
	"github.com/rulego/sdpwa/ledger"
)

// MismatchReport describes every disagreement Verify found between a
// snapshot's claimed accounting and the independently recomputed one.
// A zero-value MismatchReport (Mismatches == nil) means the snapshot
// is internally consistent.
type MismatchReport struct {
	Mismatches []string `json:"mismatches"`
}

// Clean reports whether the audit found no disagreement.
func (r MismatchReport) Clean() bool {
	return len(r.Mismatches) == 0
}

// Auditor re-verifies ledger.Snapshot values against the declared
// target delta and an optional epsilon cap, without holding any live
// aggregator state of its own.
type Auditor struct {
	deltaTolerance float64
	epsilonCap     float64 // 0 disables the cap
}

// New builds an Auditor. deltaTolerance and epsilonCap must match the
// values the producing Aggregator was configured with —
// an Auditor configured with different tolerances is auditing a
// different policy, not catching drift.
func New(deltaTolerance, epsilonCap float64) *Auditor {
	return &Auditor{deltaTolerance: deltaTolerance, epsilonCap: epsilonCap}
}

// Verify recomputes the snapshot's cumulative epsilon and delta from
// its raw entries and checks them against the declared budgets. It
// never mutates the snapshot and never consults the snapshot's own
// CumulativeEpsilon field for anything but comparison.
func (a *Auditor) Verify(snap ledger.Snapshot) (MismatchReport, error) {
	var report MismatchReport

	recomputedEpsilon := ledger.CumulativeEpsilonOf(snap.Entries, snap.TargetDelta)
	if !floatsAgree(recomputedEpsilon, snap.CumulativeEpsilon) {
		report.Mismatches = append(report.Mismatches, fmt.Sprintf(
			"cumulative epsilon mismatch: snapshot claims %v, recomputed %v", snap.CumulativeEpsilon, recomputedEpsilon))
	}

	var cumulativeDelta float64
	prevEnd := int64(-1)
	haveSeenFirst := false
	for _, e := range snap.Entries {
		if haveSeenFirst && e.WindowEndMs < prevEnd {
			report.Mismatches = append(report.Mismatches, fmt.Sprintf(
				"entries out of order: window_end_ms %d follows %d", e.WindowEndMs, prevEnd))
		}
		prevEnd = e.WindowEndMs
		haveSeenFirst = true
		cumulativeDelta += e.Delta
	}

	deltaBudget := snap.TargetDelta * (1 + a.deltaTolerance)
	if cumulativeDelta > deltaBudget {
		report.Mismatches = append(report.Mismatches, fmt.Sprintf(
			"cumulative delta %v exceeds budget %v", cumulativeDelta, deltaBudget))
	}

	if a.epsilonCap > 0 && recomputedEpsilon > a.epsilonCap {
		report.Mismatches = append(report.Mismatches, fmt.Sprintf(
			"cumulative epsilon %v exceeds declared cap %v", recomputedEpsilon, a.epsilonCap))
	}

	if !report.Clean() {
		return report, errs.New(errs.KindInternalInvariant, "audit found %d mismatch(es)", len(report.Mismatches))
	}
	return report, nil
}

// floatsAgree compares within 1e-9 relative tolerance (floored at an
// absolute 1e-9 for values near zero), enough to absorb the last-bit
// rounding drift JSON round-tripping through float64 text can
// introduce; anything beyond that is a real disagreement.
func floatsAgree(a, b float64) bool {
	const eps = 1e-9
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}
