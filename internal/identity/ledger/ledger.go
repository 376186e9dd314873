// Package ledger implements the idempotent request ledger: the single
// durable record of what the engine decided for each (caller, request) key.
// Entries are created at most once, transition Pending to Completed exactly
// once, and are never deleted.
package ledger

import (
	"context"
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// LeaseDuration bounds how long one Submit call may hold the resolution
// lease on an entry. A lease left behind by a crashed attempt becomes
// claimable again after this long.
const LeaseDuration = 30 * time.Second

// Store is the ledger persistence contract. Implementations must make
// GetOrCreate atomic with respect to the uniqueness of (caller, request):
// when two processes race on the same new key, exactly one insert succeeds
// and the loser observes the winner's row with created=false.
//
// All mutating operations act only on Pending rows; a Completed entry is
// immutable. Stores return sentinel.ErrNotFound (wrapped) for missing keys.
type Store interface {
	// GetOrCreate returns the existing entry for the key, or inserts a new
	// Pending entry. created reports whether this call performed the insert.
	GetOrCreate(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, bool, error)

	// Get is the side-effect-free read used by polling callers.
	Get(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error)

	// Claim takes the resolution lease on a Pending, unwithheld entry so
	// only one Submit runs matching and registry calls for the key at a
	// time. Returns sentinel.ErrConflict (wrapped) when the entry is
	// settled or another holder's lease has not expired; expired leases
	// are claimable again.
	Claim(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error)

	// Release frees the resolution lease after a failed attempt so an
	// immediate retry can resume. No-op when the lease is not held.
	Release(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) error

	// AttachCandidate records the candidate an in-flight Pending entry is
	// bound to while the registry finishes allocation. No-op on Completed
	// entries.
	AttachCandidate(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID) error

	// Withhold marks a Pending entry as held for human review. candidateID
	// is set for potential duplicates and nil for conflicts. No-op on
	// Completed entries.
	Withhold(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID *domain.CandidateID) error

	// Complete transitions Pending to Completed exactly once, recording the
	// confirmed identifier. First writer wins: on an already-Completed entry
	// the call is a no-op and the persisted values are returned unchanged.
	Complete(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID, trn domain.TRN, optOutToken string) (*models.LedgerEntry, error)
}
