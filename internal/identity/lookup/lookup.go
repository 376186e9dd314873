// Package lookup resolves "the" existing record for operations that must act
// on one identity. Strategies are tried in declared order; the first
// non-empty result wins and later strategies are never consulted.
package lookup

import (
	"context"
	"fmt"
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// Finder is the slice of the registry client the lookup strategies need.
type Finder interface {
	// FindByRefAndSlug looks up candidates by previously-issued reference
	// plus the caller's opaque secondary slug.
	FindByRefAndSlug(ctx context.Context, ref domain.TRN, slug string) ([]models.CandidateRecord, error)
	// FindByRefAndDOB looks up candidates by previously-issued reference
	// plus date of birth.
	FindByRefAndDOB(ctx context.Context, ref domain.TRN, dob time.Time) ([]models.CandidateRecord, error)
}

// Strategy is one way of resolving candidates from a submission. A strategy
// returns an empty slice (not an error) when the submission lacks the keys
// it needs.
type Strategy interface {
	Name() string
	Find(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error)
}

// Chain tries strategies in fixed declared order. A non-empty result
// short-circuits the chain even if the caller later filters it down to
// nothing; later strategies are not a fallback for unsatisfying results.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain over the given strategies, tried in order.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// DefaultChain is the declared strategy order for this domain:
// secondary slug + reference first, then reference + date of birth.
func DefaultChain(finder Finder) *Chain {
	return NewChain(
		RefAndSlugStrategy{Finder: finder},
		RefAndDOBStrategy{Finder: finder},
	)
}

// Resolve runs the chain. A result with more than one member must be treated
// as a conflict by the caller; the chain never guesses.
func (c *Chain) Resolve(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error) {
	for _, s := range c.strategies {
		records, err := s.Find(ctx, attrs)
		if err != nil {
			return nil, fmt.Errorf("lookup strategy %s: %w", s.Name(), err)
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

// RefAndSlugStrategy resolves by the caller's opaque secondary slug plus the
// previously-issued reference. Strongest signal when present.
type RefAndSlugStrategy struct {
	Finder Finder
}

func (RefAndSlugStrategy) Name() string { return "ref_and_slug" }

func (s RefAndSlugStrategy) Find(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error) {
	if attrs.PriorRef.IsZero() || attrs.SecondarySlug == "" {
		return nil, nil
	}
	return s.Finder.FindByRefAndSlug(ctx, attrs.PriorRef, attrs.SecondarySlug)
}

// RefAndDOBStrategy resolves by previously-issued reference plus date of
// birth, the weaker composite key.
type RefAndDOBStrategy struct {
	Finder Finder
}

func (RefAndDOBStrategy) Name() string { return "ref_and_dob" }

func (s RefAndDOBStrategy) Find(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error) {
	if attrs.PriorRef.IsZero() || attrs.DateOfBirth.IsZero() {
		return nil, nil
	}
	return s.Finder.FindByRefAndDOB(ctx, attrs.PriorRef, attrs.DateOfBirth)
}
