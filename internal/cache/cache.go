// Package cache memoizes simulation results. A simulation is a pure function
// of its inputs, so entries never need invalidating, only expiring.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores opaque values by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache with periodic cleanup of expired entries.
type Memory struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemory starts a cache whose entries live for ttl. Call Close to stop
// the cleanup goroutine.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		store: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go m.cleanup(5 * time.Minute)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.store[key]
	if !ok || m.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.val, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = memoryEntry{val: val, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Len counts stored entries, expired ones included until cleanup runs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *Memory) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
		}
	}
}
