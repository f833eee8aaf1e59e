package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
)

type ZapLogger struct {
	log *zap.SugaredLogger
}

var current atomic.Pointer[ZapLogger]

// NewLogger builds a logger from config and installs it as the package logger.
func NewLogger(config zap.Config) (*ZapLogger, error) {
	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	return Replace(l), nil
}

// Replace installs l as the package logger. The package-level helpers add two
// frames, which the caller skip accounts for.
func Replace(l *zap.Logger) *ZapLogger {
	z := &ZapLogger{log: l.WithOptions(zap.AddCallerSkip(2)).Sugar()}
	current.Store(z)
	return z
}

// Restore reinstalls a logger previously returned by GetLogger.
func Restore(z *ZapLogger) {
	current.Store(z)
}

func GetLogger() *ZapLogger {
	z := current.Load()
	if z == nil {
		panic("logger not initialized")
	}
	return z
}

// With returns a child logger carrying the given key-value pairs on every entry.
func (l *ZapLogger) With(values ...any) *ZapLogger {
	return &ZapLogger{log: l.log.With(values...)}
}

func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func (l *ZapLogger) Panic(message string, values ...any) {
	l.log.Panicw(message, values...)
}

func (l *ZapLogger) Fatal(err error, values ...any) {
	l.log.Fatalw(err.Error(), values...)
}

func (l *ZapLogger) Info(message string, values ...any) {
	l.log.Infow(message, values...)
}

func (l *ZapLogger) Warn(message string, values ...any) {
	l.log.Warnw(message, values...)
}

func (l *ZapLogger) Error(message string, values ...any) {
	l.log.Errorw(message, values...)
}

func (l *ZapLogger) Debug(message string, values ...any) {
	l.log.Debugw(message, values...)
}

func (l *ZapLogger) Printf(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}
