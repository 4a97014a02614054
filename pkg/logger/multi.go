package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Multi creates a logger that writes every entry to all of the given loggers.
// The chat command uses it to keep console output terse while a JSON log file
// records debug detail.
func Multi(loggers ...*zap.Logger) *zap.Logger {
	cores := make([]zapcore.Core, 0, len(loggers))
	for _, l := range loggers {
		if l == nil {
			continue
		}
		cores = append(cores, l.Core())
	}
	return zap.New(zapcore.NewTee(cores...))
}
