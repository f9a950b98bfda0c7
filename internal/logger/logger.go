// Package logger provides the zap-backed structured logger used throughout
// the coordinator.
package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum logging level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	FatalLevel Level = "fatal"
)

// Config configures logger construction.
type Config struct {
	Level       Level    `json:"level" yaml:"level"`
	Development bool     `json:"development" yaml:"development"`
	Encoding    string   `json:"encoding" yaml:"encoding"`
	OutputPaths []string `json:"outputPaths" yaml:"outputPaths"`
}

// Interface is the logger surface the rest of the coordinator depends on,
// so call sites never import zap directly.
type Interface interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Fatal(msg string, fields ...any)
	With(fields ...any) Interface
	WithRunID(runID string) Interface
	WithComponent(component string) Interface
	WithDuration(d time.Duration) Interface
	WithError(err error) Interface
}

// Logger implements Interface over a zap.Logger.
type Logger struct {
	zapLogger *zap.Logger
}

var logLevels = map[Level]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
	FatalLevel: zapcore.FatalLevel,
}

// New builds a Logger from cfg.
func New(cfg Config) (Interface, error) {
	if cfg.Level == "" {
		cfg.Level = InfoLevel
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "json"
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stdout"}
	}

	level, ok := logLevels[cfg.Level]
	if !ok {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	zl, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{zapLogger: zl}, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() Interface {
	return &Logger{zapLogger: zap.NewNop()}
}

// Int, String and Int64 build structured fields to pass as variadic
// arguments to Interface's logging methods, without callers importing zap.
func Int(key string, value int) any       { return zap.Int(key, value) }
func Int64(key string, value int64) any   { return zap.Int64(key, value) }
func String(key, value string) any        { return zap.String(key, value) }

func toZapFields(fields []any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zap.Field); ok {
			out = append(out, zf)
		}
	}
	return out
}

func (l *Logger) Debug(msg string, fields ...any) { l.zapLogger.Debug(msg, toZapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...any)  { l.zapLogger.Info(msg, toZapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...any)  { l.zapLogger.Warn(msg, toZapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...any) { l.zapLogger.Error(msg, toZapFields(fields)...) }
func (l *Logger) Fatal(msg string, fields ...any) { l.zapLogger.Fatal(msg, toZapFields(fields)...) }

func (l *Logger) With(fields ...any) Interface {
	return &Logger{zapLogger: l.zapLogger.With(toZapFields(fields)...)}
}

func (l *Logger) WithRunID(runID string) Interface {
	return l.With(zap.String("run_id", runID))
}

func (l *Logger) WithComponent(component string) Interface {
	return l.With(zap.String("component", component))
}

func (l *Logger) WithDuration(d time.Duration) Interface {
	return l.With(zap.Duration("duration", d))
}

func (l *Logger) WithError(err error) Interface {
	return l.With(zap.Error(err))
}

// Zap exposes the underlying *zap.Logger for packages (e.g. gin middleware)
// that need direct zap field helpers.
func (l *Logger) Zap() *zap.Logger {
	return l.zapLogger
}
