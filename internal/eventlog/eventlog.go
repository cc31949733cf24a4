// Package eventlog wraps structured logging for the debugger core, built on
// the same zap logger type the pack's interop-context code threads through
// as a constructor argument rather than a global.
package eventlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a zap.SugaredLogger whose console encoder respects
// NO_COLOR and the given verbosity. quiet suppresses everything below Warn;
// verbose enables Debug.
func New(quiet, verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	switch {
	case quiet:
		level = zapcore.WarnLevel
	case verbose:
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if _, noColor := os.LookupEnv("NO_COLOR"); !noColor {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core).Sugar()
}

// Noop returns a logger that discards everything, used by tests and by
// library consumers that don't want console output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
