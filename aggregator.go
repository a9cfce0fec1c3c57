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

package sdpwa

import (
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/rulego/sdpwa/accumulator"
	"github.com/rulego/sdpwa/bounder"
	"github.com/rulego/sdpwa/config"
	"github.com/rulego/sdpwa/errs"
	"github.com/rulego/sdpwa/ledger"
	"github.com/rulego/sdpwa/logger"
	"github.com/rulego/sdpwa/noise"
	"github.com/rulego/sdpwa/window"
)

// Aggregator is the façade composing the window manager, contribution
// bounder, raw accumulator, noise engine, and privacy ledger into the
// single-owner, cooperative state machine described by the package
// doc. Nothing here is safe for concurrent use by multiple goroutines
// without an external lock — determinism depends on a single caller
// driving Ingest and Release in a fixed order.
type Aggregator struct {
	cfg config.Config

	windows *window.Manager
	bounder *bounder.ContributionBounder
	raw     *accumulator.RawAccumulator
	noise   *noise.Engine
	ledger  *ledger.Ledger

	scaleCount float64
	scaleSum   float64

	log logger.Logger
}

// New validates cfg and constructs an Aggregator seeded with seed. An
// invalid config, or an empty seed, fails with a KindInvalidConfig error.
func New(cfg config.Config, seed []byte, opts ...Option) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	windows, err := window.NewManager(cfg.Window)
	if err != nil {
		return nil, err
	}
	noiseEngine, err := noise.New(seed)
	if err != nil {
		return nil, err
	}

	a := &Aggregator{
		cfg:        cfg,
		windows:    windows,
		bounder:    bounder.New(cfg.Bounds),
		raw:        accumulator.New(),
		noise:      noiseEngine,
		ledger:     ledger.New(cfg.DP.TargetDelta, cfg.DP.LedgerDeltaTol, cfg.DP.EpsilonCap),
		scaleCount: cfg.SensitivityCount() / cfg.DP.EpsilonCount,
		scaleSum:   cfg.SensitivitySum() / cfg.DP.EpsilonSum,
		// A fresh logger instance per aggregator (the logger package has
		// no shared default): Option mutators like WithLogLevel must never
		// reach across aggregator instances (each is independent, per the
		// package doc).
		log: logger.NewLogger(logger.INFO, os.Stdout),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Ingest admits ev into every window it covers. It never
// panics. A non-finite value, a negative timestamp, or a timestamp
// preceding the configured window origin fails with KindInvalidEvent.
// A timestamp preceding the oldest open window fails with
// KindLateEvent. If the identity's contribution is capped in at least
// one covered window, Ingest still admits the event into every window
// where it was not capped, and returns a KindContributionCapped error
// as a non-fatal notice.
func (a *Aggregator) Ingest(ev Event) error {
	if math.IsNaN(ev.Value) || math.IsInf(ev.Value, 0) {
		return errs.New(errs.KindInvalidEvent, "event value must be finite, got %v", ev.Value)
	}
	if ev.TimestampMs < 0 {
		return errs.New(errs.KindInvalidEvent, "event timestamp_ms must be >= 0, got %d", ev.TimestampMs)
	}
	if ev.TimestampMs < a.cfg.Window.OriginMs {
		return errs.New(errs.KindInvalidEvent, "event timestamp_ms %d precedes window origin %d", ev.TimestampMs, a.cfg.Window.OriginMs)
	}

	ids, err := a.windows.Admit(ev.TimestampMs)
	if err != nil {
		return err
	}

	capped := false
	for _, id := range ids {
		clamped, ok := a.bounder.Admit(id, ev.Identity, ev.Value)
		if !ok {
			capped = true
			continue
		}
		a.raw.Add(id, clamped)
	}
	if capped {
		return errs.NewWindowed(errs.KindContributionCapped, ids[0].StartMs, ids[0].EndMs,
			"identity exceeded max_contributions_per_window in at least one covered window")
	}
	return nil
}

// Release seals every open window whose end is <= upToMs, draws noise,
// appends a ledger entry, and emits one ReleaseSnapshot per window, in
// order of window end. If a ledger append fails with BudgetExhausted,
// Release stops processing further windows and returns the snapshots
// already committed together with the error; the remaining sealed
// windows stay sealed, undrained, and are retried on a later Release
// call once the budget is widened.
func (a *Aggregator) Release(upToMs int64) ([]ReleaseSnapshot, error) {
	sealed := a.windows.SealUpTo(upToMs)
	snapshots := make([]ReleaseSnapshot, 0, len(sealed))
	token := uuid.NewString()

	for _, id := range sealed {
		rawCount, rawSum, _ := a.raw.Snapshot(id)

		logger.Emit(a.log, logger.DEBUG, logger.WindowNotice{
			StartMs: id.StartMs, EndMs: id.EndMs,
			Kind: logger.NoticeSealed, Count: rawCount, HasCount: true,
			CorrelationID: token,
		})

		countNoise, err := a.noise.Draw(id.StartMs, "count", a.scaleCount)
		if err != nil {
			return snapshots, err
		}
		sumNoise, err := a.noise.Draw(id.StartMs, "sum", a.scaleSum)
		if err != nil {
			return snapshots, err
		}

		entry := ledger.Entry{
			WindowStartMs: id.StartMs,
			WindowEndMs:   id.EndMs,
			Epsilons:      []float64{a.cfg.DP.EpsilonCount, a.cfg.DP.EpsilonSum},
			Delta:         a.cfg.DP.DeltaPerWindow,
		}

		accounting, err := a.ledger.Append(entry)
		if err != nil {
			logger.Emit(a.log, logger.WARN, logger.WindowNotice{
				StartMs: id.StartMs, EndMs: id.EndMs,
				Kind:          logger.NoticeHeldBack,
				CorrelationID: token,
			})
			return snapshots, err
		}

		snapshots = append(snapshots, ReleaseSnapshot{
			WindowStartMs: id.StartMs,
			WindowEndMs:   id.EndMs,
			NoisyCount:    float64(rawCount) + countNoise,
			NoisySum:      rawSum + sumNoise,
			RawCount:      rawCount,
			RawSum:        rawSum,
			Privacy: PrivacyLoss{
				PerReleaseEpsilons: accounting.PerReleaseEpsilons,
				ReleaseDelta:       accounting.ReleaseDelta,
				CumulativeEpsilon:  accounting.CumulativeEpsilon,
				CumulativeDelta:    accounting.CumulativeDelta,
			},
		})

		logger.Emit(a.log, logger.INFO, logger.WindowNotice{
			StartMs: id.StartMs, EndMs: id.EndMs,
			Kind:          logger.NoticeReleased,
			CorrelationID: token,
		})

		a.raw.Retire(id)
		a.bounder.Retire(id)
		a.windows.Retire(id)
	}
	return snapshots, nil
}

// Ledger returns a by-value snapshot of the privacy ledger, suitable
// for handing to an audit.Auditor or serializing across a process
// boundary.
func (a *Aggregator) Ledger() ledger.Snapshot {
	return a.ledger.Snapshot()
}

// OpenWindows returns the currently open window IDs, for host-side
// introspection and diagnostics.
func (a *Aggregator) OpenWindows() []window.ID {
	return a.windows.OpenWindows()
}
