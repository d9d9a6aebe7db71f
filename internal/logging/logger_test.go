package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("LOG_TIMESTAMP", "2024-01-01T00:00:00Z")
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetFormat("text")
		_ = SetPackageLogLevels(map[string]string{})
	})
	return &out, &errOut
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		level    string
		expected LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"bogus", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			require.NoError(t, Initialize(tt.level))
			assert.Equal(t, tt.expected, globalLogger.level)
			assert.Equal(t, "casa", globalLogger.name)
		})
	}
	require.NoError(t, Initialize("info"))
}

func TestInitialize_InvalidPackageLevel(t *testing.T) {
	err := Initialize("info", map[string]string{"analysis": "loud"})
	assert.Error(t, err)
	require.NoError(t, Initialize("info"))
}

func TestTextOutput_SortedFieldsAndRouting(t *testing.T) {
	out, errOut := captureOutput(t)
	require.NoError(t, Initialize("info"))

	logger := GetLogger("service").WithField("run_id", "r1")
	logger.InfoWithFields("period analysed", Field("period", "2024-H1"), Field("flagged", 3))
	logger.Debug("hidden")
	logger.Error("failed: %s", "boom")

	assert.Equal(t,
		"[2024-01-01T00:00:00Z] [INFO] service: period analysed | flagged=3 period=2024-H1 run_id=r1\n",
		out.String())
	assert.Equal(t, "[2024-01-01T00:00:00Z] [ERROR] service: failed: boom | run_id=r1\n", errOut.String())
}

func TestJSONOutput(t *testing.T) {
	out, _ := captureOutput(t)
	require.NoError(t, Initialize("debug"))
	SetFormat("json")

	GetLogger("analysis").DebugWithFields("scored", Field("routes", 4))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "analysis", entry["logger"])
	assert.Equal(t, "scored", entry["msg"])
	assert.Equal(t, float64(4), entry["routes"])
	assert.Equal(t, "2024-01-01T00:00:00Z", entry["ts"])
}

func TestPackageLevels(t *testing.T) {
	out, _ := captureOutput(t)
	require.NoError(t, Initialize("warn", map[string]string{
		"analysis.*":        "debug",
		"analysis.systemic": "error",
	}))

	GetLogger("analysis").Debug("core debug")
	GetLogger("analysis.funnel").Debug("funnel debug")
	GetLogger("analysis.systemic").Warn("suppressed")
	GetLogger("apiserver").Info("suppressed")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "core debug")
	assert.Contains(t, lines[1], "funnel debug")
}

func TestMatchesPattern(t *testing.T) {
	assert.True(t, matchesPattern("analysis.systemic", "analysis.*"))
	assert.True(t, matchesPattern("analysis", "analysis.*"))
	assert.True(t, matchesPattern("api", "api"))
	assert.False(t, matchesPattern("apiserver", "api.*"))
	assert.False(t, matchesPattern("api", "apiserver"))
}

func TestWithFieldsIsImmutable(t *testing.T) {
	base := GetLogger("x")
	child := base.WithField("a", 1)
	grandchild := child.WithFields(Field("b", 2))

	assert.Empty(t, base.fields)
	assert.Len(t, child.fields, 1)
	assert.Len(t, grandchild.fields, 2)
}

func TestContextFields(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		assert.Nil(t, extractContextFields(nil))
	})

	t.Run("explicit values and request id", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), TraceIDKey(), "trace-1")
		ctx = context.WithValue(ctx, SpanIDKey(), "span-1")
		ctx = WithRequestID(ctx, "req-1")
		assert.Equal(t, map[string]interface{}{
			"trace_id":   "trace-1",
			"span_id":    "span-1",
			"request_id": "req-1",
		}, extractContextFields(ctx))
	})

	t.Run("otel span context wins", func(t *testing.T) {
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: trace.TraceID{1, 2, 3},
			SpanID:  trace.SpanID{4, 5, 6},
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)
		ctx = context.WithValue(ctx, TraceIDKey(), "ignored")

		fields := extractContextFields(ctx)
		assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
		assert.Equal(t, sc.SpanID().String(), fields["span_id"])
	})
}

func TestFatalCallsExit(t *testing.T) {
	_, errOut := captureOutput(t)
	require.NoError(t, Initialize("info"))

	var code int
	prev := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = prev })

	GetLogger("cmd").Fatal("cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[FATAL] cmd: cannot start")
}
