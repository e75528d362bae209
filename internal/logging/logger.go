/*
Package logging wraps zap behind the Info/Warn/Error/Debug call-site
shape the rest of this codebase uses, with optional file rotation via
lumberjack.
*/
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled, printf-style logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Options configures file rotation. A zero value logs to stderr only.
type Options struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a Logger. With a non-empty FilePath, logs are rotated via
// lumberjack in addition to going to stderr.
func New(opts Options) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zapcore.DebugLevel),
	}
	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), zapcore.DebugLevel))
	}

	core := zapcore.NewTee(cores...)
	return &Logger{sugar: zap.New(core).Sugar()}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...any) { l.sugar.Infof(format, v...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...any) { l.sugar.Warnf(format, v...) }

// Error logs an error message.
func (l *Logger) Error(format string, v ...any) { l.sugar.Errorf(format, v...) }

// Debug logs a debug-level message.
func (l *Logger) Debug(format string, v ...any) { l.sugar.Debugf(format, v...) }

// Sync flushes any buffered log entries, called on shutdown.
func (l *Logger) Sync() error { return l.sugar.Sync() }
