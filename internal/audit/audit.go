// Package audit emits one event per allocation resolution. The ledger never
// deletes entries; the audit stream is the complementary record of how each
// entry got its state.
package audit

import (
	"context"
	"sync"
	"time"

	"registrar/pkg/domain"
)

// Outcome names how a submission was resolved.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAttached  Outcome = "attached"
	OutcomeWithheld  Outcome = "withheld"
	OutcomeConflict  Outcome = "conflict"
)

// Event captures one allocation resolution. CandidateID is a pointer so
// conflict events, which resolve to no candidate, omit the field entirely.
type Event struct {
	At          time.Time           `json:"at"`
	CallerID    domain.CallerID     `json:"caller_id"`
	RequestID   domain.RequestID    `json:"request_id"`
	CandidateID *domain.CandidateID `json:"candidate_id,omitempty"`
	Outcome     Outcome             `json:"outcome"`
}

// Publisher delivers audit events to a sink. Delivery failures must never
// fail the business operation; the coordinator logs and moves on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// MemoryPublisher collects events in memory. For tests and single-process
// development runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory constructs an in-memory publisher.
func NewMemory() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *MemoryPublisher) Close() {}
