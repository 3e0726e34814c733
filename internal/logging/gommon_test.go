package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T, level string) (*GommonLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New("test", &buf, level), &buf
}

func TestGommonLogger_Levels_WriteExpectedOutput(t *testing.T) {
	logger, buf := newTestLogger(t, "debug")
	ctx := context.Background()

	logger.Debug(ctx, "dbg", "a", 1)
	logger.Info(ctx, "inf", "b", "two")
	logger.Warn(ctx, "wrn", "c", true)
	logger.Error(ctx, "err", "d", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", `"a":1`},
		{"INFO", "inf", `"b":"two"`},
		{"WARN", "wrn", `"c":true`},
		{"ERROR", "err", `"d":"boom"`},
	}
	for i, tc := range tests {
		assert.Contains(t, lines[i], `"level":"`+tc.level+`"`)
		assert.Contains(t, lines[i], `"message":"`+tc.msg+`"`)
		assert.Contains(t, lines[i], tc.attr)
	}
}

func TestGommonLogger_RespectsLevel(t *testing.T) {
	logger, buf := newTestLogger(t, "warn")
	ctx := context.Background()

	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestGommonLogger_With_AddsAttributes(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	child := logger.With("component", "auth", "user", "alice")
	child.Info(context.Background(), "hello", "k", "v")
	logger.Info(context.Background(), "parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	for _, s := range []string{`"component":"auth"`, `"user":"alice"`, `"k":"v"`} {
		assert.Contains(t, lines[0], s)
	}
	assert.NotContains(t, lines[1], "component")
}

func TestGommonLogger_RequestIDFromContext(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	ctx := WithRequestID(context.Background(), "req-42")
	logger.Info(ctx, "handled")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestGommonLogger_OddArgs(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	logger.Info(context.Background(), "odd", "dangling")

	assert.Contains(t, buf.String(), `"!BADKEY":"dangling"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, log.WARN, ParseLevel("warning"))
	assert.Equal(t, log.ERROR, ParseLevel("error"))
	assert.Equal(t, log.OFF, ParseLevel("off"))
	assert.Equal(t, log.INFO, ParseLevel("verbose"))
}
