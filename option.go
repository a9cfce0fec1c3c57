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
	"io"

	"github.com/rulego/sdpwa/logger"
)

// Option modifies an Aggregator's construction-time behavior. Every
// Aggregator is independent process-wide state: unlike a global
// logging default, an Option configures only the instance it is passed
// to, since a process may host many aggregators side by side.
type Option func(*Aggregator)

// WithLogger attaches a custom diagnostic logger to this aggregator.
// Diagnostics never carry identities or raw values — see the logger
// package doc comment — so any implementation is safe to point at a
// shared sink across many aggregator instances.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		a.log = log
	}
}

// WithLogLevel sets this aggregator's diagnostic log level without
// replacing the underlying logger implementation.
func WithLogLevel(level logger.Level) Option {
	return func(a *Aggregator) {
		a.log.SetLevel(level)
	}
}

// WithLogOutput points this aggregator's diagnostics at a custom
// io.Writer at the given level.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(a *Aggregator) {
		a.log = logger.NewLogger(level, output)
	}
}

// WithDiscardLog disables all diagnostic output for this aggregator.
func WithDiscardLog() Option {
	return func(a *Aggregator) {
		a.log = logger.NewDiscardLogger()
	}
}
