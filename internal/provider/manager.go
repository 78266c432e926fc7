package provider

import (
	"context"
	"log/slog"
	"sync"
)

// Logger is the slice of the application logger the manager needs.
type Logger interface {
	With(keyValues ...interface{}) *slog.Logger
	Info(msg string, keyValues ...interface{})
	Error(msg string, keyValues ...interface{})
}

// Manager owns the process-wide provider registration table: the
// composed view over every configured backend, built once at startup.
// The table is read concurrently and only replaced wholesale, either
// by an administrative reinstall or by Reload.
type Manager struct {
	mu       sync.RWMutex
	composed Provider
	backends []Backend
	logger   Logger
}

// NewManager composes the given backends into a priority provider,
// optionally wrapped with an LRU metadata cache when cacheCapacity is
// positive.
func NewManager(backends []Backend, cacheCapacity int, logger Logger) (*Manager, error) {
	m := &Manager{logger: logger}
	if err := m.Install(backends, cacheCapacity); err != nil {
		return nil, err
	}
	return m, nil
}

// Install atomically swaps the whole registration table. In-flight
// reads keep the provider handle they already resolved.
func (m *Manager) Install(backends []Backend, cacheCapacity int) error {
	var composed Provider = NewPriority(backends...)
	if cacheCapacity > 0 {
		cached, err := NewCached(composed, cacheCapacity)
		if err != nil {
			return err
		}
		composed = cached
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logger != nil {
		for _, b := range backends {
			m.logger.Info("registered backend", "name", b.Name, "priority", b.Priority)
		}
	}
	m.backends = append([]Backend(nil), backends...)
	m.composed = composed
	return nil
}

// Provider returns the current composed provider handle.
func (m *Manager) Provider() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.composed
}

// Backends returns the registered backends in precedence order.
func (m *Manager) Backends() []Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Backend(nil), m.backends...)
}

// Reload re-scans every backend through the composed provider.
func (m *Manager) Reload(ctx context.Context) error {
	p := m.Provider()
	if p == nil {
		return nil
	}
	if m.logger != nil {
		m.logger.Info("reloading providers")
	}
	return p.Reload(ctx)
}
