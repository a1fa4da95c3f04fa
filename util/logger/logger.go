// Package logger holds the developer log. It is silent unless Init is
// called with verbose set, user facing output never goes through it.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init replaces the global logger. With verbose set it logs at debug level
// to stderr using the development console encoder.
func Init(verbose bool) error {
	if !verbose {
		Set(zap.NewNop().Sugar())
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Set(l.Sugar())
	return nil
}

// Set swaps the global logger, tests use it with zaptest observers.
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Sync() {
	_ = L().Sync()
}
