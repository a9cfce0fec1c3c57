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

// Package errs defines the typed error vocabulary shared by every SDPWA
// component. Errors never carry identities or finite event values. A
// message names the violated constraint and, where relevant, window
// coordinates, configuration values, ledger totals, the offending
// event's timestamp, or a rejected non-finite (NaN or infinite) value.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why an SDPWA operation failed.
type Kind int

const (
	// KindInvalidConfig marks a construction-time configuration violation.
	// Fatal to the aggregator being constructed.
	KindInvalidConfig Kind = iota
	// KindInvalidEvent marks a non-finite value or a timestamp before origin.
	// Local to the offending event; aggregator state is unchanged.
	KindInvalidEvent
	// KindLateEvent marks an event whose timestamp precedes every open window.
	KindLateEvent
	// KindContributionCapped marks an identity that exceeded its per-window
	// contribution budget. Non-fatal; the event is dropped from every
	// covered window where the cap was already reached.
	KindContributionCapped
	// KindBudgetExhausted marks a release that would push the ledger's
	// cumulative delta (or a caller-declared epsilon cap) past tolerance.
	KindBudgetExhausted
	// KindInternalInvariant marks a detected programming error. The
	// aggregator that raised it must be discarded.
	KindInternalInvariant
)

// String renders the kind the way it appears in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindInvalidEvent:
		return "InvalidEvent"
	case KindLateEvent:
		return "LateEvent"
	case KindContributionCapped:
		return "ContributionCapped"
	case KindBudgetExhausted:
		return "BudgetExhausted"
	case KindInternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by SDPWA components.
type Error struct {
	Kind    Kind
	Message string
	// WindowStartMs and WindowEndMs are set when the error is scoped to a
	// specific window; both zero means "not window-scoped".
	WindowStartMs int64
	WindowEndMs   int64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.WindowStartMs != 0 || e.WindowEndMs != 0 {
		return fmt.Sprintf("[%s] %s (window [%d,%d))", e.Kind, e.Message, e.WindowStartMs, e.WindowEndMs)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// New builds an unscoped error of the given kind.
func New(kind Kind, message string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(message, args...)}
}

// NewWindowed builds an error scoped to a window's coordinates.
func NewWindowed(kind Kind, startMs, endMs int64, message string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(message, args...), WindowStartMs: startMs, WindowEndMs: endMs}
}

// Is reports whether err (or something it wraps) carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsInvalidConfig reports whether err is a KindInvalidConfig error.
func IsInvalidConfig(err error) bool { return Is(err, KindInvalidConfig) }

// IsInvalidEvent reports whether err is a KindInvalidEvent error.
func IsInvalidEvent(err error) bool { return Is(err, KindInvalidEvent) }

// IsLateEvent reports whether err is a KindLateEvent error.
func IsLateEvent(err error) bool { return Is(err, KindLateEvent) }

// IsContributionCapped reports whether err is a KindContributionCapped error.
func IsContributionCapped(err error) bool { return Is(err, KindContributionCapped) }

// IsBudgetExhausted reports whether err is a KindBudgetExhausted error.
func IsBudgetExhausted(err error) bool { return Is(err, KindBudgetExhausted) }

// IsInternalInvariant reports whether err is a KindInternalInvariant error.
func IsInternalInvariant(err error) bool { return Is(err, KindInternalInvariant) }
