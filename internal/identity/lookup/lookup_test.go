package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// countingStrategy records invocations so short-circuit behaviour is
// observable.
type countingStrategy struct {
	name    string
	records []models.CandidateRecord
	err     error
	calls   int
}

func (s *countingStrategy) Name() string { return s.name }

func (s *countingStrategy) Find(context.Context, models.IdentityAttributes) ([]models.CandidateRecord, error) {
	s.calls++
	return s.records, s.err
}

func record() models.CandidateRecord {
	return models.CandidateRecord{ID: domain.CandidateID(uuid.New())}
}

func TestChain_ShortCircuitsOnFirstNonEmptyResult(t *testing.T) {
	first := &countingStrategy{name: "first", records: []models.CandidateRecord{record()}}
	second := &countingStrategy{name: "second", records: []models.CandidateRecord{record()}}

	got, err := NewChain(first, second).Resolve(context.Background(), models.IdentityAttributes{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, first.records[0].ID, got[0].ID)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "second strategy must never be invoked")
}

func TestChain_FallsThroughEmptyResults(t *testing.T) {
	first := &countingStrategy{name: "first"}
	second := &countingStrategy{name: "second", records: []models.CandidateRecord{record()}}

	got, err := NewChain(first, second).Resolve(context.Background(), models.IdentityAttributes{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChain_AllEmptyResolvesToNothing(t *testing.T) {
	first := &countingStrategy{name: "first"}
	second := &countingStrategy{name: "second"}

	got, err := NewChain(first, second).Resolve(context.Background(), models.IdentityAttributes{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChain_StrategyErrorStopsTheChain(t *testing.T) {
	boom := errors.New("registry down")
	first := &countingStrategy{name: "first", err: boom}
	second := &countingStrategy{name: "second", records: []models.CandidateRecord{record()}}

	_, err := NewChain(first, second).Resolve(context.Background(), models.IdentityAttributes{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Equal(t, 0, second.calls)
}

// fakeFinder counts registry-level calls for the concrete strategies.
type fakeFinder struct {
	bySlugCalls int
	byDOBCalls  int
	bySlug      []models.CandidateRecord
	byDOB       []models.CandidateRecord
}

func (f *fakeFinder) FindByRefAndSlug(context.Context, domain.TRN, string) ([]models.CandidateRecord, error) {
	f.bySlugCalls++
	return f.bySlug, nil
}

func (f *fakeFinder) FindByRefAndDOB(context.Context, domain.TRN, time.Time) ([]models.CandidateRecord, error) {
	f.byDOBCalls++
	return f.byDOB, nil
}

func TestDefaultChain_SlugMatchSuppressesDOBLookup(t *testing.T) {
	finder := &fakeFinder{bySlug: []models.CandidateRecord{record()}}
	attrs := models.IdentityAttributes{
		PriorRef:      domain.TRN("1234567"),
		SecondarySlug: "slug-91",
		DateOfBirth:   time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC),
	}

	got, err := DefaultChain(finder).Resolve(context.Background(), attrs)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, finder.bySlugCalls)
	assert.Equal(t, 0, finder.byDOBCalls, "strong-key-only strategy must not run after a secondary-key hit")
}

func TestDefaultChain_StrategiesSkipWhenKeysAbsent(t *testing.T) {
	t.Run("no prior ref skips both", func(t *testing.T) {
		finder := &fakeFinder{}
		got, err := DefaultChain(finder).Resolve(context.Background(), models.IdentityAttributes{
			SecondarySlug: "slug-91",
			DateOfBirth:   time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 0, finder.bySlugCalls)
		assert.Equal(t, 0, finder.byDOBCalls)
	})

	t.Run("no slug falls through to ref and dob", func(t *testing.T) {
		finder := &fakeFinder{byDOB: []models.CandidateRecord{record()}}
		got, err := DefaultChain(finder).Resolve(context.Background(), models.IdentityAttributes{
			PriorRef:    domain.TRN("1234567"),
			DateOfBirth: time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 0, finder.bySlugCalls)
		assert.Equal(t, 1, finder.byDOBCalls)
	})
}

func TestChain_MultipleMembersReturnedUnfiltered(t *testing.T) {
	// The chain reports everything a strategy found; conflict handling is the
	// caller's job.
	finder := &fakeFinder{byDOB: []models.CandidateRecord{record(), record()}}
	got, err := DefaultChain(finder).Resolve(context.Background(), models.IdentityAttributes{
		PriorRef:    domain.TRN("1234567"),
		DateOfBirth: time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
