// Package cache provides a read-through candidate cache for the registry
// adapter. Polling reads hit GetCandidate repeatedly; the cache keeps those
// reads off the register between refreshes.
package cache

import (
	"context"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// Cache stores candidate records for a bounded time. A miss returns
// (nil, nil); errors are reserved for infrastructure failures.
type Cache interface {
	GetCandidate(ctx context.Context, id domain.CandidateID) (*models.CandidateRecord, error)
	SaveCandidate(ctx context.Context, record models.CandidateRecord) error
	// InvalidateCandidate removes a record, forcing the next read through.
	InvalidateCandidate(ctx context.Context, id domain.CandidateID) error
}
