package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	out   io.Writer = os.Stderr
	outMu sync.Mutex
)

// SetOutput redirects all loggers to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

func (l *Logger) logf(level LogLevel, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.write(level, msg, nil)
}

func (l *Logger) logWithFields(level LogLevel, msg string, fields ...LogField) {
	if !l.shouldLog(level) {
		return
	}
	l.write(level, msg, fields)
}

// write merges context, persistent and call fields (last wins) and emits a
// single line with keys in sorted order.
func (l *Logger) write(level LogLevel, msg string, fields []LogField) {
	merged := extractContextFields(l.ctx)
	if merged == nil && (len(l.fields) > 0 || len(fields) > 0) {
		merged = make(map[string]interface{}, len(l.fields)+len(fields))
	}
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, merged[k])
		}
	}
	b.WriteByte('\n')

	outMu.Lock()
	_, _ = io.WriteString(out, b.String())
	outMu.Unlock()
}

// GetTimestamp returns an RFC3339 timestamp, or LOG_TIMESTAMP when set.
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
