// Package logging provides structured logging for upgradelens.
//
// Every line goes to a single writer (stderr by default) so that commands
// printing analysis results on stdout stay machine readable.
//
// Basic usage:
//
//	logging.Initialize("info")
//	logger := logging.GetLogger("analysis")
//	logger.Info("analyzed %d documents", n)
//
// Structured fields:
//
//	logger.InfoWithFields("analysis complete",
//	    logging.Field("entities", len(entities)),
//	    logging.Field("duration_ms", elapsed.Milliseconds()),
//	)
//
// Per-package levels accept exact names and "prefix.*" wildcards:
//
//	logging.Initialize("info", map[string]string{"analysis": "debug", "api.*": "warn"})
//
// Loggers are immutable. WithField, WithFields and WithContext return copies,
// so a logger can be shared across goroutines without coordination.
//
// Set LOG_TIMESTAMP to pin the timestamp in tests.
package logging

import (
	"context"
	"os"
	"sync"
)

var (
	globalLevel = INFO
	initOnce    sync.Once
	initialized bool
	// exitFunc is called by Fatal. Overridden in tests.
	exitFunc = os.Exit
)

// LogField is a structured key/value pair attached to a log line.
type LogField struct {
	Key   string
	Value interface{}
}

// Field creates a structured logging field.
func Field(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// Logger writes leveled, structured log lines for one named component.
type Logger struct {
	level  LogLevel
	name   string
	fields map[string]interface{}
	ctx    context.Context
}

// Initialize sets the default level and optional per-package overrides.
// Unknown default levels fall back to INFO; unknown package levels are an error.
func Initialize(levelStr string, packageLevels ...map[string]string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		level = INFO
	}
	globalLevel = level
	initialized = true

	if len(packageLevels) > 0 && packageLevels[0] != nil {
		return SetPackageLogLevels(packageLevels[0])
	}
	return nil
}

// GetLogger returns a logger with the specified name.
func GetLogger(name string) *Logger {
	initOnce.Do(func() {
		if !initialized {
			_ = Initialize("info")
		}
	})
	return &Logger{
		level:  globalLevel,
		name:   name,
		fields: map[string]interface{}{},
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	if pkgLevel := GetPackageLogLevel(l.name); pkgLevel >= 0 {
		return level >= pkgLevel
	}
	return level >= l.level
}

func (l *Logger) clone() *Logger {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &Logger{level: l.level, name: l.name, fields: fields, ctx: l.ctx}
}

// WithField returns a copy of the logger carrying an extra persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	n := l.clone()
	n.fields[key] = value
	return n
}

// WithFields returns a copy of the logger carrying extra persistent fields.
func (l *Logger) WithFields(fields ...LogField) *Logger {
	n := l.clone()
	for _, f := range fields {
		n.fields[f.Key] = f.Value
	}
	return n
}

// WithContext returns a copy of the logger that adds trace_id and span_id
// from the OpenTelemetry span stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	n := l.clone()
	n.ctx = ctx
	return n
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) { l.logf(DEBUG, msg, args...) }

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) { l.logf(INFO, msg, args...) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) { l.logf(WARN, msg, args...) }

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) { l.logf(ERROR, msg, args...) }

// Fatal logs a fatal message and exits with code 1.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.shouldLog(FATAL) {
		l.logf(FATAL, msg, args...)
		exitFunc(1)
	}
}

// ErrorWithErr logs msg followed by err.
func (l *Logger) ErrorWithErr(msg string, err error) {
	l.logWithFields(ERROR, msg, Field("error", err))
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	l.logWithFields(DEBUG, msg, fields...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	l.logWithFields(INFO, msg, fields...)
}

// WarnWithFields logs a warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	l.logWithFields(WARN, msg, fields...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	l.logWithFields(ERROR, msg, fields...)
}
