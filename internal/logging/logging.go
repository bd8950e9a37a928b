// Package logging builds the shell's zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Unknown values mean info.
	Level string
	// File, when set, receives JSON logs rotated by lumberjack.
	File string
	// Development switches the console encoder to a human-friendly layout.
	Development bool
}

// Logger bundles the root logger with its runtime-adjustable level.
type Logger struct {
	*zap.Logger
	level  zap.AtomicLevel
	closer func() error
}

// New creates a logger writing to stderr and, optionally, a rotating file.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	consoleCfg := zap.NewProductionEncoderConfig()
	if opts.Development {
		consoleCfg = zap.NewDevelopmentEncoderConfig()
	}
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
		closer = rotator.Close
	}

	root := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logger{Logger: root, level: level, closer: closer}, nil
}

// Named returns a sugared child logger for a component.
func (l *Logger) Named(component string) *zap.SugaredLogger {
	return l.Logger.Named(component).Sugar()
}

// SetLevel changes the level of every logger derived from l.
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(ParseLevel(level))
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	return l.closer()
}

// ParseLevel maps a settings string to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
