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

// Package ledger is the append-only privacy-loss accounting record.
// Every release appends one Entry; cumulative epsilon is recomputed
// from scratch on each append under advanced (composition-theorem)
// accounting, so the ledger is always independently re-derivable from
// its entries alone — exactly what the external Auditor re-does.
//
// Composition policy: entries are grouped by their per-release epsilon (max of that
// release's per-metric epsilons); each group of k entries sharing an
// epsilon value ε' contributes
//
//	ε'·√(2k·ln(1/δ')) + k·ε'·(e^ε' − 1)
//
// and the group totals are summed. When the ledger's target delta is 0
// (ln(1/δ') is undefined), every group falls back to basic composition
// (ε_total = k·ε').
package ledger

import (
	"math"
	"sort"

	"github.com/rulego/sdpwa/errs"
)

// Entry is one immutable, append-only record of privacy consumption.
type Entry struct {
	WindowStartMs int64     `json:"window_start_ms"`
	WindowEndMs   int64     `json:"window_end_ms"`
	Epsilons      []float64 `json:"epsilons"`
	Delta         float64   `json:"delta"`
}

// maxEpsilon is the homogeneous per-release epsilon used for
// composition: "homogeneous ε′ = max(entry epsilons)".
func (e Entry) maxEpsilon() float64 {
	m := e.Epsilons[0]
	for _, v := range e.Epsilons[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Accounting is the privacy-loss bookkeeping attached to a single
// release, handed back to the caller so it can be embedded in that
// release's snapshot.
type Accounting struct {
	PerReleaseEpsilons []float64
	ReleaseDelta       float64
	CumulativeEpsilon  float64
	CumulativeDelta    float64
}

// Ledger accumulates ε/δ privacy-loss entries under advanced composition
// and enforces the configured delta and (optional) epsilon budgets.
type Ledger struct {
	targetDelta     float64
	deltaTolerance  float64
	epsilonCap      float64 // 0 disables the cap
	entries         []Entry
	cumulativeDelta float64
}

// New builds an empty ledger. targetDelta and deltaTolerance come from
// dp.target_delta and dp.ledger_delta_tolerance; epsilonCap is the
// optional caller-declared cumulative-epsilon ceiling (0 disables it).
func New(targetDelta, deltaTolerance, epsilonCap float64) *Ledger {
	return &Ledger{
		targetDelta:    targetDelta,
		deltaTolerance: deltaTolerance,
		epsilonCap:     epsilonCap,
	}
}

// Append validates the entry would keep the ledger within its delta (and
// optional epsilon) budget, and if so commits it. On a budget violation
// it returns a KindBudgetExhausted error and leaves the ledger state
// completely unchanged — the caller's window remains sealed, undrained,
// ready to be retried after the budget is widened.
//
// entry.WindowEndMs must be >= every previously appended entry's
// WindowEndMs (data-model invariant: entries ordered by window_end_ms).
// A violation is a programming error in the caller, not a budget
// condition, and is reported as KindInternalInvariant.
func (l *Ledger) Append(entry Entry) (Accounting, error) {
	if len(entry.Epsilons) == 0 {
		return Accounting{}, errs.New(errs.KindInternalInvariant, "ledger entry must carry at least one epsilon")
	}
	if entry.Delta < 0 {
		return Accounting{}, errs.New(errs.KindInternalInvariant, "ledger entry delta must be >= 0, got %v", entry.Delta)
	}
	if n := len(l.entries); n > 0 && entry.WindowEndMs < l.entries[n-1].WindowEndMs {
		return Accounting{}, errs.New(errs.KindInternalInvariant, "ledger entries must be appended in non-decreasing window_end_ms order")
	}

	candidateDelta := l.cumulativeDelta + entry.Delta
	deltaBudget := l.targetDelta * (1 + l.deltaTolerance)
	if candidateDelta > deltaBudget {
		return Accounting{}, errs.NewWindowed(errs.KindBudgetExhausted, entry.WindowStartMs, entry.WindowEndMs,
			"cumulative delta %v would exceed budget %v", candidateDelta, deltaBudget)
	}

	candidateEntries := append(append([]Entry(nil), l.entries...), entry)
	candidateEpsilon := cumulativeEpsilon(candidateEntries, l.targetDelta)

	if l.epsilonCap > 0 && candidateEpsilon > l.epsilonCap {
		return Accounting{}, errs.NewWindowed(errs.KindBudgetExhausted, entry.WindowStartMs, entry.WindowEndMs,
			"cumulative epsilon %v would exceed declared cap %v", candidateEpsilon, l.epsilonCap)
	}

	l.entries = candidateEntries
	l.cumulativeDelta = candidateDelta

	return Accounting{
		PerReleaseEpsilons: append([]float64(nil), entry.Epsilons...),
		ReleaseDelta:       entry.Delta,
		CumulativeEpsilon:  candidateEpsilon,
		CumulativeDelta:    l.cumulativeDelta,
	}, nil
}

// CumulativeEpsilon returns the ledger's current cumulative epsilon.
func (l *Ledger) CumulativeEpsilon() float64 {
	return cumulativeEpsilon(l.entries, l.targetDelta)
}

// CumulativeEpsilonOf recomputes cumulative epsilon for an arbitrary
// slice of entries under the given target delta. It is the exported
// form of the same composition function Append uses internally, so
// that an external auditor recomputes accounting with the identical
// arithmetic instead of a parallel reimplementation that could drift.
func CumulativeEpsilonOf(entries []Entry, targetDelta float64) float64 {
	return cumulativeEpsilon(entries, targetDelta)
}

// CumulativeDelta returns the ledger's current cumulative delta.
func (l *Ledger) CumulativeDelta() float64 {
	return l.cumulativeDelta
}

// Entries returns a by-value copy of the ledger's entries, ordered by
// window_end_ms.
func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// TargetDelta returns the ledger's configured overall delta budget.
func (l *Ledger) TargetDelta() float64 {
	return l.targetDelta
}

// cumulativeEpsilon recomputes cumulative epsilon from scratch for a
// slice of entries, grouped by homogeneous per-release epsilon. Both
// the Ledger and the external Auditor call this same function so they
// can never drift.
func cumulativeEpsilon(entries []Entry, targetDelta float64) float64 {
	groups := make(map[float64]int)
	for _, e := range entries {
		groups[e.maxEpsilon()]++
	}

	// Sort group keys for a deterministic summation order (floating
	// point addition is not associative).
	keys := make([]float64, 0, len(groups))
	for eps := range groups {
		keys = append(keys, eps)
	}
	sort.Float64s(keys)

	var total float64
	for _, eps := range keys {
		k := float64(groups[eps])
		if targetDelta == 0 {
			total += k * eps
			continue
		}
		total += eps*math.Sqrt(2*k*math.Log(1/targetDelta)) + k*eps*(math.Exp(eps)-1)
	}
	return total
}
