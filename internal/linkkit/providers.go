package linkkit

import (
	"sync"

	"go.uber.org/zap"
)

// Package-level collaborators installed by the host process. Handlers read them
// through the active* accessors so tests can swap them per case.
var (
	providerMutex     sync.RWMutex
	providedLogger    *zap.Logger
	providedMetrics   MetricsRecorder
	providedClock     Clock
	providedExchanger CodeExchanger
)

// ProvideLogger installs the logger used by the route handlers. Passing nil
// resets to a no-op logger.
func ProvideLogger(logger *zap.Logger) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	providedLogger = logger
}

// ProvideMetrics installs the metrics recorder used by the route handlers.
// Passing nil resets to a no-op recorder.
func ProvideMetrics(metrics MetricsRecorder) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	providedMetrics = metrics
}

// ProvideClock installs the clock used for state expiry. Passing nil resets to
// the system clock.
func ProvideClock(clock Clock) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	providedClock = clock
}

// ProvideCodeExchanger installs the exchanger the route handlers use to talk
// to LinkedIn. Passing nil removes it; handlers then fail closed.
func ProvideCodeExchanger(exchanger CodeExchanger) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	providedExchanger = exchanger
}

func activeLogger() *zap.Logger {
	providerMutex.RLock()
	defer providerMutex.RUnlock()
	if providedLogger == nil {
		return zap.NewNop()
	}
	return providedLogger
}

func activeMetrics() MetricsRecorder {
	providerMutex.RLock()
	defer providerMutex.RUnlock()
	if providedMetrics == nil {
		return noopMetrics{}
	}
	return providedMetrics
}

func activeClock() Clock {
	providerMutex.RLock()
	defer providerMutex.RUnlock()
	if providedClock == nil {
		return NewSystemClock()
	}
	return providedClock
}

func activeCodeExchanger() CodeExchanger {
	providerMutex.RLock()
	defer providerMutex.RUnlock()
	return providedExchanger
}
