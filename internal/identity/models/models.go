// Package models holds the value types shared by the identity-matching and
// allocation modules. Registry payloads are translated into these fixed-shape
// types at the adapter boundary; untyped data never crosses into matching.
package models

import (
	"time"

	"registrar/pkg/domain"
)

// RiskFlags are supplementary signals on a candidate record. They never
// change a classification outcome, only the review task description.
type RiskFlags struct {
	ActiveSanctions     bool
	ActiveAwardDate     bool
	EarlyYearsAwardDate bool
}

// Any reports whether at least one risk flag is set.
func (f RiskFlags) Any() bool {
	return f.ActiveSanctions || f.ActiveAwardDate || f.EarlyYearsAwardDate
}

// CandidateRecord is a record already known to the authoritative registry.
// The registry owns it; this engine only reads it (and creates new ones).
type CandidateRecord struct {
	ID         domain.CandidateID
	Attributes IdentityAttributes
	TRN        domain.TRN // zero until the registry completes allocation
	Flags      RiskFlags
}

// LedgerStatus is the caller-visible state of a submission.
type LedgerStatus string

const (
	// StatusPending means the identifier is not yet confirmed. Withheld
	// submissions stay Pending until a human resolves them out of band.
	StatusPending LedgerStatus = "pending"
	// StatusCompleted means the identifier is confirmed, either freshly
	// allocated or attached to an existing identity. Terminal.
	StatusCompleted LedgerStatus = "completed"
)

// LedgerEntry is the only durable, caller-facing state of the engine.
// (CallerID, RequestID) is the unique natural key; at most one entry ever
// exists per logical submission and entries are never deleted.
type LedgerEntry struct {
	CallerID    domain.CallerID
	RequestID   domain.RequestID
	CandidateID *domain.CandidateID
	TRN         domain.TRN
	Status      LedgerStatus
	// Withheld marks entries whose resolution is awaiting human review:
	// potential duplicates (CandidateID set) and conflicts (CandidateID nil).
	// A withheld entry is never auto-completed by polling reads.
	Withheld bool
	// InFlight marks an entry whose resolution flow is currently held by one
	// Submit call. The lease expires so a crashed attempt cannot block the
	// key forever.
	InFlight       bool
	LeaseExpiresAt time.Time
	OptOutToken    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Completed reports whether the identifier has been confirmed.
func (e *LedgerEntry) Completed() bool {
	return e.Status == StatusCompleted
}

// AwaitingRegistry reports whether a polling read should re-check the
// registry: the entry is attached to a candidate whose allocation was still
// in flight, and the entry is not held for review.
func (e *LedgerEntry) AwaitingRegistry() bool {
	return e.Status == StatusPending && !e.Withheld && e.CandidateID != nil && e.TRN.IsZero()
}

// ReviewTask is the structured flag raised when automatic allocation is
// withheld. It is handed to the registry's task queue and not tracked here.
type ReviewTask struct {
	CandidateID domain.CandidateID
	Description string
	DueAt       time.Time
}
