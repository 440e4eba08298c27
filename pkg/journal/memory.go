package journal

import (
	"sync"

	"quell-hq/quell/pkg/ratelimit"
)

// Memory is a bounded in-memory journal backend. Once MaxEntries is
// reached, each new entry evicts the oldest. All data is lost when the
// process exits.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	start   int
	size    int
}

// DefaultMemoryMaxEntries bounds a Memory backend created with zero size.
const DefaultMemoryMaxEntries = 10000

// NewMemory creates a Memory backend retaining at most maxEntries entries.
// Non-positive values use DefaultMemoryMaxEntries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryMaxEntries
	}
	return &Memory{entries: make([]Entry, maxEntries)}
}

// Record implements ratelimit.Recorder.
func (m *Memory) Record(a ratelimit.Admission) {
	e := newEntry(a)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.size == len(m.entries) {
		m.entries[m.start] = e
		m.start = (m.start + 1) % len(m.entries)
		return
	}
	m.entries[(m.start+m.size)%len(m.entries)] = e
	m.size++
}

// Entries returns a snapshot of the retained entries, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, m.size)
	for i := 0; i < m.size; i++ {
		out[i] = m.entries[(m.start+i)%len(m.entries)]
	}
	return out
}

// Len returns the number of retained entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Close implements Backend. Memory has nothing to flush.
func (m *Memory) Close() error {
	return nil
}
