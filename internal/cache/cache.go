// Package cache provides the time-boxed memoization of per-URL
// extraction results. The cache is an explicit, injectable service so
// tests can substitute a fake; it is keyed by the raw URL string
// (whitespace-trimmed, otherwise unnormalized), so callers must supply
// a consistent representation.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cached description stays servable.
const DefaultTTL = 24 * time.Hour

// Cache is the job-description cache contract. Set overwrites
// unconditionally: a write race on the same key is last-writer-wins,
// which is acceptable because both writers computed equivalent content
// for the same URL.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url, text string)
	// Sweep removes expired entries and reports how many were purged.
	Sweep(ctx context.Context) int
}

type entry struct {
	text  string
	added time.Time
}

// Memory is the in-process implementation: a process-wide shared map
// with lazy expiry on read and periodic sweeps. Growth is unbounded by
// design; the TTL is the only eviction.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory builds a Memory cache. A nil clock uses time.Now; tests
// inject their own to simulate TTL expiry.
func NewMemory(ttl time.Duration, clock func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     clock,
	}
}

func key(url string) string { return strings.TrimSpace(url) }

func (m *Memory) Get(_ context.Context, url string) (string, bool) {
	k := key(url)

	m.mu.RLock()
	e, ok := m.entries[k]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}

	if m.now().Sub(e.added) > m.ttl {
		// Lazy expiry: purge on access.
		m.mu.Lock()
		if cur, ok := m.entries[k]; ok && cur.added.Equal(e.added) {
			delete(m.entries, k)
		}
		m.mu.Unlock()
		return "", false
	}
	return e.text, true
}

func (m *Memory) Set(_ context.Context, url, text string) {
	m.mu.Lock()
	m.entries[key(url)] = entry{text: text, added: m.now()}
	m.mu.Unlock()
}

func (m *Memory) Sweep(_ context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for k, e := range m.entries {
		if e.added.Before(cutoff) {
			delete(m.entries, k)
			purged++
		}
	}
	return purged
}

// Len reports the current entry count, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
