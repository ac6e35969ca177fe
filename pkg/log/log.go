package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used throughout the note encryption core.
// It never accepts key material, shared secrets, or plaintext as arguments;
// callers pass only non-secret facts (entrypoint name, success/failure,
// byte lengths).
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Sync() error
}

type zapLogger struct {
	log *zap.Logger
}

// New creates a new info-level logger.
func New() Logger {
	return NewWithLevel("info")
}

// NewWithLevel creates a new logger at the given level ("debug", "info",
// "warn", "error").
func NewWithLevel(level string) Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return NoOp()
	}
	return &zapLogger{log: l}
}

// NewLogger creates a new info-level logger tagged with name.
func NewLogger(name string) Logger {
	l := New()
	if zl, ok := l.(*zapLogger); ok {
		return &zapLogger{log: zl.log.Named(name)}
	}
	return l
}

// NoOp returns a logger that discards everything, for tests and library
// callers that do not want log output.
func NoOp() Logger {
	return &noOpLogger{}
}

// NoLog is a shared no-op logger instance.
var NoLog = NoOp()

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.log.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.log.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.log.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.log.Error(msg, fields...) }
func (l *zapLogger) Sync() error                           { return l.log.Sync() }

type noOpLogger struct{}

func (n *noOpLogger) Debug(msg string, fields ...zap.Field) {}
func (n *noOpLogger) Info(msg string, fields ...zap.Field)  {}
func (n *noOpLogger) Warn(msg string, fields ...zap.Field)  {}
func (n *noOpLogger) Error(msg string, fields ...zap.Field) {}
func (n *noOpLogger) Sync() error                           { return nil }

// String, Int and Bool re-export the zap field constructors so callers of
// this package do not need a direct zap import for the common cases.
func String(key, val string) zap.Field  { return zap.String(key, val) }
func Int(key string, val int) zap.Field { return zap.Int(key, val) }
func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }
