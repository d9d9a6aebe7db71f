package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Format selects the line encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	outputMu  sync.Mutex
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	logFormat           = FormatText
)

// SetOutput redirects log output. ERROR and FATAL go to errOut, everything else to out.
// A nil writer leaves the corresponding stream unchanged.
func SetOutput(out, errOut io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// SetFormat selects text or json output. Unknown values select text.
func SetFormat(format string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if Format(strings.ToLower(format)) == FormatJSON {
		logFormat = FormatJSON
		return
	}
	logFormat = FormatText
}

// writeLog formats one line and routes it by severity
func (l *Logger) writeLog(level LogLevel, msg string, fields map[string]interface{}) {
	outputMu.Lock()
	defer outputMu.Unlock()

	var line string
	if logFormat == FormatJSON {
		line = l.jsonLine(level, msg, fields)
	} else {
		line = l.textLine(level, msg, fields)
	}

	w := stdout
	if level >= ERROR {
		w = stderr
	}
	fmt.Fprintln(w, line)
}

func (l *Logger) textLine(level LogLevel, msg string, fields map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)
	if len(fields) > 0 {
		b.WriteString(" |")
		for _, k := range sortedKeys(fields) {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	return b.String()
}

func (l *Logger) jsonLine(level LogLevel, msg string, fields map[string]interface{}) string {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = GetTimestamp()
	entry["level"] = level.String()
	entry["logger"] = l.name
	entry["msg"] = msg

	// encoding/json sorts map keys
	data, err := json.Marshal(entry)
	if err != nil {
		return l.textLine(level, msg, fields)
	}
	return string(data)
}

// logf is the internal logging function for formatted messages
func (l *Logger) logf(level LogLevel, msg string, args ...interface{}) {
	l.writeLog(level, fmt.Sprintf(msg, args...), l.mergedFields())
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetTimestamp returns an RFC3339 timestamp.
// Can be overridden via LOG_TIMESTAMP env var for testing
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
