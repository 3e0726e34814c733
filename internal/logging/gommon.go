package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

// requestIDKey is the context key under which the request id is carried.
type requestIDKey struct{}

// WithRequestID returns ctx carrying the given request id; loggers attach it
// to every entry written with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id carried by ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// GommonLogger writes JSON log lines through labstack/gommon, the logger echo
// uses, so application and access logs share one format and output.
type GommonLogger struct {
	l      *log.Logger
	fields log.JSON
}

// New returns a GommonLogger with the given prefix writing to out at level.
// Unknown levels fall back to info.
func New(prefix string, out io.Writer, level string) *GommonLogger {
	l := log.New(prefix)
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	return &GommonLogger{l: l}
}

// Backend exposes the underlying gommon logger so it can be installed as
// echo's logger.
func (g *GommonLogger) Backend() *log.Logger {
	return g.l
}

func (g *GommonLogger) Debug(ctx context.Context, msg string, args ...any) {
	g.l.Debugj(g.entry(ctx, msg, args))
}

func (g *GommonLogger) Info(ctx context.Context, msg string, args ...any) {
	g.l.Infoj(g.entry(ctx, msg, args))
}

func (g *GommonLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.l.Warnj(g.entry(ctx, msg, args))
}

func (g *GommonLogger) Error(ctx context.Context, msg string, args ...any) {
	g.l.Errorj(g.entry(ctx, msg, args))
}

func (g *GommonLogger) With(args ...any) Logger {
	fields := make(log.JSON, len(g.fields)+len(args)/2)
	for k, v := range g.fields {
		fields[k] = v
	}
	addPairs(fields, args)
	return &GommonLogger{l: g.l, fields: fields}
}

func (g *GommonLogger) entry(ctx context.Context, msg string, args []any) log.JSON {
	j := make(log.JSON, len(g.fields)+len(args)/2+2)
	for k, v := range g.fields {
		j[k] = v
	}
	addPairs(j, args)
	if id := RequestIDFrom(ctx); id != "" {
		j["request_id"] = id
	}
	j["message"] = msg
	return j
}

// addPairs copies key-value pairs into j. A trailing key without a value is
// recorded under "!BADKEY", mirroring log/slog.
func addPairs(j log.JSON, args []any) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			j["!BADKEY"] = args[i]
			return
		}
		v := args[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		j[key] = v
	}
}

// ParseLevel maps a textual level to a gommon level.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return New("nop", io.Discard, "off")
}
