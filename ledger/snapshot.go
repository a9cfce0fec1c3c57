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

package ledger

import "encoding/json"

// Snapshot is the stable, by-value serialized form of a Ledger. Field
// names are snake_case and are exactly what the deterministic hash
// canonicalization (and any host/WASM binding) operates on.
type Snapshot struct {
	TargetDelta       float64 `json:"target_delta"`
	Entries           []Entry `json:"entries"`
	CumulativeEpsilon float64 `json:"cumulative_epsilon"`
}

// Snapshot returns a by-value snapshot of the ledger, suitable for
// handing to an external Auditor or serializing across a process
// boundary.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		TargetDelta:       l.targetDelta,
		Entries:           l.Entries(),
		CumulativeEpsilon: l.CumulativeEpsilon(),
	}
}

// Encode serializes the snapshot to its canonical JSON wire form.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a ledger snapshot previously produced by Encode. The
// result is read-only audit material; it is never wrapped back into a
// live *Ledger.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
