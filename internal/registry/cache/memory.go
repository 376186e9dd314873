package cache

import (
	"context"
	"sync"
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// Memory is an in-process TTL cache. Suitable for single-instance
// deployments and tests; distributed deployments should use Redis so
// instances agree on freshness.
type Memory struct {
	mu      sync.Mutex
	entries map[domain.CandidateID]memoryEntry
	ttl     time.Duration
	clock   func() time.Time
}

type memoryEntry struct {
	record    models.CandidateRecord
	expiresAt time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMemoryClock sets the clock function for testability.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory constructs an in-process cache with the given TTL.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[domain.CandidateID]memoryEntry),
		ttl:     ttl,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) GetCandidate(_ context.Context, id domain.CandidateID) (*models.CandidateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if m.clock().After(entry.expiresAt) {
		delete(m.entries, id)
		return nil, nil
	}
	record := entry.record
	return &record, nil
}

func (m *Memory) SaveCandidate(_ context.Context, record models.CandidateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[record.ID] = memoryEntry{
		record:    record,
		expiresAt: m.clock().Add(m.ttl),
	}
	return nil
}

func (m *Memory) InvalidateCandidate(_ context.Context, id domain.CandidateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
