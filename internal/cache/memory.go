package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process Listing used when no Redis address is configured.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	pages map[string]map[string]memoryEntry
	gens  map[string]uint64
}

// NewMemory creates an in-memory Listing whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:   ttl,
		now:   time.Now,
		pages: make(map[string]map[string]memoryEntry),
		gens:  make(map[string]uint64),
	}
}

// Get implements Listing.
func (m *Memory) Get(_ context.Context, path, variant string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gen := m.gens[path]
	entry, ok := m.pages[path][variant]
	if !ok {
		return Entry{Generation: gen}, nil
	}
	if m.now().After(entry.expires) {
		delete(m.pages[path], variant)
		return Entry{Generation: gen}, nil
	}
	return Entry{Data: entry.data, Found: true, Generation: gen}, nil
}

// Set implements Listing.
func (m *Memory) Set(_ context.Context, path, variant string, generation uint64, data []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[path] != generation {
		return false, nil
	}

	page, ok := m.pages[path]
	if !ok {
		page = make(map[string]memoryEntry)
		m.pages[path] = page
	}
	page[variant] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	return true, nil
}

// Invalidate implements Listing.
func (m *Memory) Invalidate(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range paths {
		delete(m.pages, p)
		m.gens[p]++
	}
	return nil
}

// Close implements Listing.
func (m *Memory) Close() error {
	return nil
}
