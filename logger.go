package sessionmiddleware

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// badKey is the key used for a value without a key, as log/slog does.
const badKey = "!BADKEY"

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (a *logrusLoggerAdapter) Debug(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(pairs(args))).Debug(msg)
}
func (a *logrusLoggerAdapter) Info(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(pairs(args))).Info(msg)
}
func (a *logrusLoggerAdapter) Warn(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(pairs(args))).Warn(msg)
}
func (a *logrusLoggerAdapter) Error(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(pairs(args))).Error(msg)
}

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func (a *zerologLoggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug().Fields(pairs(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Info(msg string, args ...any) {
	a.l.Info().Fields(pairs(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Warn(msg string, args ...any) {
	a.l.Warn().Fields(pairs(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Error(msg string, args ...any) {
	a.l.Error().Fields(pairs(args)).Msg(msg)
}

// NewZapLogger returns a Logger adapter for zap.Logger.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLoggerAdapter{l.Sugar()}
}

type zapLoggerAdapter struct{ l *zap.SugaredLogger }

func (a *zapLoggerAdapter) Debug(msg string, args ...any) { a.l.Debugw(msg, flatten(args)...) }
func (a *zapLoggerAdapter) Info(msg string, args ...any)  { a.l.Infow(msg, flatten(args)...) }
func (a *zapLoggerAdapter) Warn(msg string, args ...any)  { a.l.Warnw(msg, flatten(args)...) }
func (a *zapLoggerAdapter) Error(msg string, args ...any) { a.l.Errorw(msg, flatten(args)...) }

// pairs turns slog-style alternating key/value arguments into a map.
func pairs(args []any) map[string]any {
	fields := make(map[string]any, len(args)/2)
	for len(args) > 0 {
		var key string
		key, args = nextKey(args)
		if len(args) == 0 {
			break
		}
		fields[key] = fieldValue(args[0])
		args = args[1:]
	}
	return fields
}

// flatten normalises keys so zap never sees a non-string key.
func flatten(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for len(args) > 0 {
		var key string
		key, args = nextKey(args)
		if len(args) == 0 {
			break
		}
		out = append(out, key, fieldValue(args[0]))
		args = args[1:]
	}
	return out
}

// nextKey consumes a key. A non-string in key position is reported under
// badKey and kept as the value.
func nextKey(args []any) (string, []any) {
	if key, ok := args[0].(string); ok {
		return key, args[1:]
	}
	return badKey, args
}

func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return v
}
