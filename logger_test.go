package sessionmiddleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockLogger records calls for assertions.
type mockLogger struct {
	debugCalls []logCall
	infoCalls  []logCall
	warnCalls  []logCall
	errorCalls []logCall
}

type logCall struct {
	msg  string
	args []any
}

func (m *mockLogger) Debug(msg string, args ...any) {
	m.debugCalls = append(m.debugCalls, logCall{msg, args})
}
func (m *mockLogger) Info(msg string, args ...any) {
	m.infoCalls = append(m.infoCalls, logCall{msg, args})
}
func (m *mockLogger) Warn(msg string, args ...any) {
	m.warnCalls = append(m.warnCalls, logCall{msg, args})
}
func (m *mockLogger) Error(msg string, args ...any) {
	m.errorCalls = append(m.errorCalls, logCall{msg, args})
}

var _ Logger = (*slog.Logger)(nil)

func TestZapLogger(t *testing.T) {
	zapCore, recorded := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(zapCore))

	logger.Debug("debug message", "key", "value")
	assert.Equal(t, 0, recorded.Len(), "Debug message should not be recorded at Info level")

	logger.Info("info message", "path", "/me")
	logger.Warn("warn message", "error", errors.New("boom"))
	logger.Error("error message")

	entries := recorded.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, map[string]any{"path": "/me"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, map[string]any{"error": "boom"}, entries[1].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var first, last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))

	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "debug message", first["message"])
	assert.Equal(t, "value", first["key"])
	assert.Equal(t, "error", last["level"])
	assert.Equal(t, "boom", last["error"])
}

func TestLogrusLogger(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	logger := NewLogrusLogger(base)

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "error", errors.New("boom"))

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "value", entries[0].Data["key"])
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, "error message", hook.LastEntry().Message)
	assert.Equal(t, "boom", hook.LastEntry().Data["error"])
}

func Test_pairs(t *testing.T) {
	testCases := []struct {
		name string
		args []any
		want map[string]any
	}{
		{name: "empty", args: nil, want: map[string]any{}},
		{name: "pairs", args: []any{"a", 1, "b", "two"}, want: map[string]any{"a": 1, "b": "two"}},
		{name: "dangling key", args: []any{"a", 1, "b"}, want: map[string]any{"a": 1}},
		{name: "non-string key", args: []any{42}, want: map[string]any{badKey: 42}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, pairs(testCase.args))
		})
	}
}
