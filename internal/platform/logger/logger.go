// Package logger provides structured logging for the world server and the
// character processes. All mutations of shared world state should be
// traceable through this.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap SugaredLogger with the small surface the rest of the
// codebase uses.
type Logger struct {
	sugar *zap.SugaredLogger
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}

// NewLogger creates a console logger writing to stderr. Used by tests and as
// the default when no log file is configured.
func NewLogger() *Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stderr),
		zapcore.InfoLevel,
	)
	return &Logger{sugar: zap.New(core).Sugar()}
}

// NewFileLogger creates a logger that also writes to a rolling file.
// Rotation: 10MB per file, 3 backups, 7 days retention.
func NewFileLogger(filePath string) *Logger {
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	enc := encoderConfig()
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(lj), zapcore.DebugLevel),
	)
	return &Logger{sugar: zap.New(core, zap.AddCaller()).Sugar()}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.sugar.Warn(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Event logs a world event with its actor for audit trails.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.sugar.Infow(details, "event", eventType, "actor", actorID)
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
