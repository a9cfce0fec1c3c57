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

// Package logger provides per-instance, level-filtered logging for an
// SDPWA aggregator, plus WindowNotice: a closed diagnostic shape that
// makes the aggregator's no-identity/no-raw-value rule a structural
// property of what can be logged rather than a convention callers must
// remember. There is deliberately no package-level default logger or
// global mutable state — every aggregator instance owns exactly the
// Logger it was constructed or configured with, per the package's
// single-owner, no-shared-state contract.
package logger

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Level defines log levels
type Level int

const (
	// DEBUG debug level, displays detailed debug information
	DEBUG Level = iota
	// INFO info level, displays general information
	INFO
	// WARN warning level, displays warning information
	WARN
	// ERROR error level, only displays error information
	ERROR
	// OFF disables logging
	OFF
)

// String returns string representation of log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Logger interface defines basic methods for logging
type Logger interface {
	// Debug records debug level logs
	Debug(format string, args ...interface{})
	// Info records info level logs
	Info(format string, args ...interface{})
	// Warn records warning level logs
	Warn(format string, args ...interface{})
	// Error records error level logs
	Error(format string, args ...interface{})
	// SetLevel sets the log level
	SetLevel(level Level)
}

// defaultLogger is the default log implementation
type defaultLogger struct {
	level  Level
	logger *log.Logger
}

// NewLogger creates a new logger
// Parameters:
//   - level: log level
//   - output: output destination, such as os.Stdout, os.Stderr, or file
//
// Returns:
//   - Logger: logger instance
//
// Example:
//
//	logger := NewLogger(INFO, os.Stdout)
//	logger.Info("Application started")
func NewLogger(level Level, output io.Writer) Logger {
	return &defaultLogger{
		level:  level,
		logger: log.New(output, "", 0), // custom line format, no stdlib prefix
	}
}

// Debug records a debug-level log line.
func (l *defaultLogger) Debug(format string, args ...interface{}) {
	if l.level <= DEBUG {
		l.log(DEBUG, format, args...)
	}
}

// Info records an info-level log line.
func (l *defaultLogger) Info(format string, args ...interface{}) {
	if l.level <= INFO {
		l.log(INFO, format, args...)
	}
}

// Warn records a warning-level log line.
func (l *defaultLogger) Warn(format string, args ...interface{}) {
	if l.level <= WARN {
		l.log(WARN, format, args...)
	}
}

// Error records an error-level log line.
func (l *defaultLogger) Error(format string, args ...interface{}) {
	if l.level <= ERROR {
		l.log(ERROR, format, args...)
	}
}

// SetLevel sets the logger's minimum level.
func (l *defaultLogger) SetLevel(level Level) {
	l.level = level
}

// log internal logging method, formats and outputs log information
func (l *defaultLogger) log(level Level, format string, args ...interface{}) {
	if l.level == OFF {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	logLine := fmt.Sprintf("[%s] [%s] %s", timestamp, level.String(), message)
	l.logger.Println(logLine)
}

// discardLogger is a logger that discards all log output
type discardLogger struct{}

// NewDiscardLogger creates a logger that discards all logs
// Used in scenarios where log output is not needed
func NewDiscardLogger() Logger {
	return &discardLogger{}
}

func (d *discardLogger) Debug(format string, args ...interface{}) {}
func (d *discardLogger) Info(format string, args ...interface{})  {}
func (d *discardLogger) Warn(format string, args ...interface{})  {}
func (d *discardLogger) Error(format string, args ...interface{}) {}
func (d *discardLogger) SetLevel(level Level)                     {}

// NoticeKind is the closed vocabulary of window-scoped diagnostic
// events WindowNotice accepts. It is not a free-form string so that the
// set of things the aggregator can say about a window stays fixed and
// auditable.
type NoticeKind string

const (
	// NoticeSealed marks a window that has been sealed and is ready to
	// be noised and ledgered.
	NoticeSealed NoticeKind = "sealed"
	// NoticeReleased marks a window that has been noised, ledgered, and
	// emitted to the caller.
	NoticeReleased NoticeKind = "released"
	// NoticeHeldBack marks a sealed window whose release was withheld
	// because the ledger append failed (budget exhaustion or a detected
	// invariant violation).
	NoticeHeldBack NoticeKind = "held_back"
)

// WindowNotice is the only shape SDPWA's own code uses to log about a
// window's lifecycle. Its fields are window coordinates, an aggregate
// count, a fixed NoticeKind, and an opaque correlation token — there is
// no field through which a per-identity value could be threaded into a
// log line, so the no-identity/no-raw-value diagnostics rule is
// enforced by the type, not by caller discipline.
type WindowNotice struct {
	StartMs int64
	EndMs   int64
	Kind    NoticeKind
	// Count is the aggregate this notice concerns (e.g. raw_count at
	// seal time); it is rendered only when HasCount is set.
	Count uint64
	// HasCount distinguishes an explicit zero count from "not applicable".
	HasCount bool
	// CorrelationID, if non-empty, ties this notice to others emitted
	// for the same Release call. It carries no identity or value — it
	// is generated by the caller, not derived from event data.
	CorrelationID string
}

// Emit renders the notice and writes it to log at the given level.
func Emit(log Logger, level Level, n WindowNotice) {
	line := n.line()
	switch level {
	case DEBUG:
		log.Debug("%s", line)
	case INFO:
		log.Info("%s", line)
	case WARN:
		log.Warn("%s", line)
	case ERROR:
		log.Error("%s", line)
	}
}

func (n WindowNotice) line() string {
	prefix := ""
	if n.CorrelationID != "" {
		prefix = n.CorrelationID + " "
	}
	if n.HasCount {
		return fmt.Sprintf("%swindow [%d,%d) %s count=%d", prefix, n.StartMs, n.EndMs, n.Kind, n.Count)
	}
	return fmt.Sprintf("%swindow [%d,%d) %s", prefix, n.StartMs, n.EndMs, n.Kind)
}
