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

/*
Package sdpwa implements a streaming differential-privacy window
aggregator: an edge-deployable, single-owner state machine that
ingests per-identity numeric events and periodically releases noisy
aggregate statistics (count, sum) over tumbling or sliding time
windows, while maintaining a verifiable ε/δ privacy-loss ledger.

# Core Features

  - Tumbling and sliding window assignment with half-open interval semantics
  - Per-identity contribution bounding (clamping and capping) before any noise is added
  - A deterministic, cross-host-reproducible Laplace noise engine
  - An append-only privacy ledger under advanced-composition accounting, independently
    re-verifiable by the audit package
  - A dynamic-typed configuration boundary normalizer for host/WASM callers

# Getting Started

	agg, err := sdpwa.New(cfg, []byte("seed-1"))
	if err != nil {
		panic(err)
	}
	if err := agg.Ingest(sdpwa.Event{Identity: "a", Value: 0.5, TimestampMs: 100}); err != nil {
		// InvalidEvent, LateEvent, and ContributionCapped are all non-fatal to the aggregator.
	}
	snapshots, err := agg.Release(2000)

A process may host many independent aggregators; each gets its own
logger unless the caller explicitly shares one across instances via
WithLogger, and there is no other global state between them.
*/
package sdpwa
