package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type key struct {
	caller  domain.CallerID
	request domain.RequestID
}

// MemoryStore is an in-memory ledger for tests and local development.
// The mutex stands in for the storage-level uniqueness constraint.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[key]*models.LedgerEntry
	clock   func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemory creates an empty in-memory ledger.
func NewMemory(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[key]*models.LedgerEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) GetOrCreate(_ context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{caller: callerID, request: requestID}
	if existing, ok := s.entries[k]; ok {
		return copyEntry(existing), false, nil
	}
	now := s.clock()
	entry := &models.LedgerEntry{
		CallerID:  callerID,
		RequestID: requestID,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.entries[k] = entry
	return copyEntry(entry), true, nil
}

func (s *MemoryStore) Get(_ context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
	}
	return copyEntry(entry), nil
}

func (s *MemoryStore) Claim(_ context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
	}
	now := s.clock()
	if entry.Status != models.StatusPending || entry.Withheld {
		return nil, fmt.Errorf("ledger entry %s/%s is settled: %w", callerID, requestID, sentinel.ErrConflict)
	}
	if entry.InFlight && entry.LeaseExpiresAt.After(now) {
		return nil, fmt.Errorf("ledger entry %s/%s is being resolved: %w", callerID, requestID, sentinel.ErrConflict)
	}
	entry.InFlight = true
	entry.LeaseExpiresAt = now.Add(LeaseDuration)
	entry.UpdatedAt = now
	return copyEntry(entry), nil
}

func (s *MemoryStore) Release(_ context.Context, callerID domain.CallerID, requestID domain.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok || !entry.InFlight {
		return nil
	}
	entry.InFlight = false
	entry.LeaseExpiresAt = time.Time{}
	entry.UpdatedAt = s.clock()
	return nil
}

func (s *MemoryStore) AttachCandidate(_ context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok {
		return fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
	}
	if entry.Status != models.StatusPending {
		return nil
	}
	id := candidateID
	entry.CandidateID = &id
	entry.InFlight = false
	entry.LeaseExpiresAt = time.Time{}
	entry.UpdatedAt = s.clock()
	return nil
}

func (s *MemoryStore) Withhold(_ context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID *domain.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok {
		return fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
	}
	if entry.Status != models.StatusPending {
		return nil
	}
	entry.Withheld = true
	if candidateID != nil {
		id := *candidateID
		entry.CandidateID = &id
	}
	entry.InFlight = false
	entry.LeaseExpiresAt = time.Time{}
	entry.UpdatedAt = s.clock()
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID, trn domain.TRN, optOutToken string) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key{caller: callerID, request: requestID}]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
	}
	if entry.Status == models.StatusCompleted {
		// First writer won; never overwrite an issued identifier.
		return copyEntry(entry), nil
	}
	id := candidateID
	entry.CandidateID = &id
	entry.TRN = trn
	entry.OptOutToken = optOutToken
	entry.Status = models.StatusCompleted
	entry.Withheld = false
	entry.InFlight = false
	entry.LeaseExpiresAt = time.Time{}
	entry.UpdatedAt = s.clock()
	return copyEntry(entry), nil
}

func copyEntry(e *models.LedgerEntry) *models.LedgerEntry {
	clone := *e
	if e.CandidateID != nil {
		id := *e.CandidateID
		clone.CandidateID = &id
	}
	return &clone
}
