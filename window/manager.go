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

package window

import (
	"sort"

	"github.com/rulego/sdpwa/config"
	"github.com/rulego/sdpwa/errs"
)

// Manager tracks the set of currently open windows and maps event
// timestamps onto them under either a tumbling (stride == size) or
// sliding (stride < size) policy. Manager is single-owner, cooperative,
// and holds no raw event data itself — that lives in the accumulator.
type Manager struct {
	sizeMs   int64
	strideMs int64
	originMs int64

	open map[ID]struct{}

	// retiredStartMs is the highest StartMs among retired windows; it
	// only ever advances, so a retired window can never be re-created
	// even after the open set drains to empty. retired distinguishes
	// "nothing retired yet" from a retired window starting at 0.
	retiredStartMs int64
	retired        bool
}

// NewManager builds a Manager from a window configuration. cfg is
// assumed already validated (config.Config.Validate); NewManager still
// defends against a directly-constructed config.Window with stride > size.
func NewManager(cfg config.Window) (*Manager, error) {
	if cfg.Size <= 0 {
		return nil, errs.New(errs.KindInvalidConfig, "window size must be > 0")
	}
	if cfg.Stride <= 0 {
		return nil, errs.New(errs.KindInvalidConfig, "window stride must be > 0")
	}
	if cfg.Stride > cfg.Size {
		return nil, errs.New(errs.KindInvalidConfig, "window stride must be <= window size")
	}
	if cfg.OriginMs < 0 {
		return nil, errs.New(errs.KindInvalidConfig, "window origin_ms must be >= 0")
	}
	return &Manager{
		sizeMs:   cfg.Size.Milliseconds(),
		strideMs: cfg.Stride.Milliseconds(),
		originMs: cfg.OriginMs,
		open:     make(map[ID]struct{}),
	}, nil
}

// Tumbling reports whether stride == size.
func (m *Manager) Tumbling() bool { return m.strideMs == m.sizeMs }

// WindowsCovering returns every window ID whose half-open interval
// contains tsMs: k ranges over
// [ceil((ts-size+1-origin)/stride), floor((ts-origin)/stride)].
func (m *Manager) WindowsCovering(tsMs int64) []ID {
	lo := ceilDiv(tsMs-m.sizeMs+1-m.originMs, m.strideMs)
	hi := floorDiv(tsMs-m.originMs, m.strideMs)

	ids := make([]ID, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		start := m.originMs + k*m.strideMs
		ids = append(ids, ID{StartMs: start, EndMs: start + m.sizeMs})
	}
	return ids
}

// Admit maps tsMs onto the windows it contributes to, lazily opening any
// that don't exist yet, and returns their IDs. It rejects the event with
// a KindLateEvent error — without any side effect — if tsMs precedes the
// start of the oldest currently open window, or if every window it would
// cover has already been retired. Windows at or before the retirement
// watermark are never re-created, so an event covering both retired and
// still-open windows contributes only to the open ones.
func (m *Manager) Admit(tsMs int64) ([]ID, error) {
	if oldest, ok := m.oldestOpenStart(); ok && tsMs < oldest {
		return nil, errs.New(errs.KindLateEvent, "timestamp %d precedes oldest open window start %d", tsMs, oldest)
	}

	ids := m.WindowsCovering(tsMs)
	if m.retired {
		live := ids[:0]
		for _, id := range ids {
			if id.StartMs > m.retiredStartMs {
				live = append(live, id)
			}
		}
		ids = live
		if len(ids) == 0 {
			return nil, errs.New(errs.KindLateEvent, "timestamp %d maps only to windows retired through start %d", tsMs, m.retiredStartMs)
		}
	}
	for _, id := range ids {
		if _, exists := m.open[id]; !exists {
			m.open[id] = struct{}{}
		}
	}
	return ids, nil
}

// SealUpTo returns every open window whose end is <= nowMs, ordered by
// (end_ms, start_ms). Sealed windows remain in the open set until
// Retire is called for them explicitly — seal_up_to alone never mutates
// state, so a caller can inspect what would release without committing.
func (m *Manager) SealUpTo(nowMs int64) []ID {
	sealed := make([]ID, 0)
	for id := range m.open {
		if id.EndMs <= nowMs {
			sealed = append(sealed, id)
		}
	}
	sort.Sort(byEndThenStart(sealed))
	return sealed
}

// Retire removes a window from the open set and advances the
// retirement watermark. Call only after its release has been fully
// committed (noised, ledgered, emitted).
func (m *Manager) Retire(id ID) {
	delete(m.open, id)
	if !m.retired || id.StartMs > m.retiredStartMs {
		m.retiredStartMs = id.StartMs
		m.retired = true
	}
}

// OpenWindows returns a snapshot of the currently open window IDs, for
// host-side introspection. The returned slice is a fresh copy.
func (m *Manager) OpenWindows() []ID {
	ids := make([]ID, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	sort.Sort(byEndThenStart(ids))
	return ids
}

func (m *Manager) oldestOpenStart() (int64, bool) {
	first := true
	var oldest int64
	for id := range m.open {
		if first || id.StartMs < oldest {
			oldest = id.StartMs
			first = false
		}
	}
	return oldest, !first
}

// floorDiv computes floor(a/b) for integer a, b with b > 0.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ceilDiv computes ceil(a/b) for integer a, b with b > 0.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
