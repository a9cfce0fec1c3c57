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

// PrivacyLoss is the privacy-accounting portion of a ReleaseSnapshot,
// giving the consumer the exact ε/δ spent on this release alongside
// the ledger's running totals at the moment it was appended.
type PrivacyLoss struct {
	PerReleaseEpsilons []float64 `json:"per_release_epsilons"`
	ReleaseDelta       float64   `json:"release_delta"`
	CumulativeEpsilon  float64   `json:"cumulative_epsilon"`
	CumulativeDelta    float64   `json:"cumulative_delta"`
}

// ReleaseSnapshot is the stable, by-value form of one sealed, noised,
// and ledgered window, handed to the consumer exactly once.
type ReleaseSnapshot struct {
	WindowStartMs int64       `json:"window_start_ms"`
	WindowEndMs   int64       `json:"window_end_ms"`
	NoisyCount    float64     `json:"noisy_count"`
	NoisySum      float64     `json:"noisy_sum"`
	RawCount      uint64      `json:"raw_count"`
	RawSum        float64     `json:"raw_sum"`
	Privacy       PrivacyLoss `json:"privacy"`
}
