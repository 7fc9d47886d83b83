// internal/logger/logger.go
package logger

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where logs go
type Config struct {
	LogFile    string
	MaxSize    int  // megabytes
	MaxAge     int  // days
	MaxBackups int  // rotated files kept
	Compress   bool // gzip rotated files
	Debug      bool
	// Console tees a human-readable copy to stdout. The TUI owns the
	// terminal and must leave this off.
	Console bool
	// Recent receives a copy of every entry for in-app display
	Recent *RecentBuffer
}

// DefaultConfig returns the rotation policy used by both binaries
func DefaultConfig(logFile string) *Config {
	return &Config{
		LogFile:    logFile,
		MaxSize:    20,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

// New builds a logger writing JSON to a rotating file, plus the optional
// console and in-memory cores.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		return nil, errors.New("logger config is required")
	}

	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var cores []zapcore.Core

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	if cfg.Console {
		cores = append(cores, zapcore.NewCore(PrettyEncoder(), zapcore.Lock(os.Stdout), level))
	}

	if cfg.Recent != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(cfg.Recent), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// WithOperation tags a logger with an operation name and a fresh correlation id
func WithOperation(l *zap.Logger, operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// Sync flushes l, ignoring the errors terminals return for stdout syncs
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
