// Package cache provides the in-process read caches used by the dashboard
// layer: a generic TTL-bounded LRU plus a manager that sweeps expired entries
// in the background.
package cache

import (
	"sync"
	"time"
)

// Cleaner is implemented by caches whose expired entries the Manager sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the background sweep over every registered cache.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner

	started  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Caches register at construction
// time, before StartCleanup runs.
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup launches the sweep goroutine. Call Stop to end it.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Manager) sweep() {
	m.mu.Lock()
	caches := make([]Cleaner, len(m.caches))
	copy(caches, m.caches)
	m.mu.Unlock()

	for _, c := range caches {
		c.CleanExpired()
	}
}

// Stop ends the sweep goroutine and waits for it to exit. Safe to call more
// than once, or without a prior StartCleanup.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	m.stopOnce.Do(func() {
		close(m.stop)
		if started {
			<-m.done
		}
	})
}
