package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

func sampleRecord() models.CandidateRecord {
	return models.CandidateRecord{
		ID: domain.CandidateID(uuid.New()),
		Attributes: models.IdentityAttributes{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			DateOfBirth: time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC),
		},
		TRN: domain.TRN("1234567"),
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		m := NewMemory(time.Minute)
		record := sampleRecord()

		require.NoError(t, m.SaveCandidate(ctx, record))

		got, err := m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, record, *got)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		m := NewMemory(time.Minute)

		got, err := m.GetCandidate(ctx, domain.CandidateID(uuid.New()))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("entry expires after ttl", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		m := NewMemory(time.Minute, WithMemoryClock(func() time.Time { return now }))
		record := sampleRecord()

		require.NoError(t, m.SaveCandidate(ctx, record))

		now = now.Add(59 * time.Second)
		got, err := m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)

		now = now.Add(2 * time.Second)
		got, err = m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate forces a miss", func(t *testing.T) {
		m := NewMemory(time.Minute)
		record := sampleRecord()

		require.NoError(t, m.SaveCandidate(ctx, record))
		require.NoError(t, m.InvalidateCandidate(ctx, record.ID))

		got, err := m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		m := NewMemory(time.Minute)
		record := sampleRecord()
		require.NoError(t, m.SaveCandidate(ctx, record))

		got, err := m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		got.Attributes.FirstName = "mutated"

		again, err := m.GetCandidate(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Attributes.FirstName)
	})
}
