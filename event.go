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

// Event is one per-identity numeric observation submitted to Ingest.
// Identity is an opaque string (a user ID, device ID, session key —
// the aggregator never interprets it beyond grouping contributions for
// sensitivity bounding) and is never retained past the window it
// contributed to.
type Event struct {
	Identity    string
	Value       float64
	TimestampMs int64
}
