package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Panic(message string, values ...any)
	Fatal(err error, values ...any)
	Printf(format string, args ...interface{})
}

func init() {
	if _, err := NewLogger(configFromEnv()); err != nil {
		panic(err)
	}
}

// configFromEnv reads LOG_ENV and LOG_LEVEL. It runs before the application
// config is loaded, so it looks at the environment directly.
func configFromEnv() zap.Config {
	config := zap.NewDevelopmentConfig()
	if os.Getenv("LOG_ENV") == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "time"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if l, err := zapcore.ParseLevel(lvl); err == nil {
			config.Level = zap.NewAtomicLevelAt(l)
		}
	}
	return config
}

// SetComponent tags every later entry with the running binary, e.g. api or
// processor.
func SetComponent(name string) {
	current.Store(GetLogger().With("component", name))
}

// Sync flushes buffered entries; call it on the way out of main.
func Sync() {
	_ = GetLogger().Sync()
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Panic(msg string, values ...any) {
	GetLogger().Panic(msg, values...)
}

func Fatal(err error, values ...any) {
	GetLogger().Fatal(err, values...)
}
