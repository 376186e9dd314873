package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/identity/models"
	"registrar/internal/registry/cache"
	"registrar/pkg/domain"
)

func TestCachedClientGetCandidate(t *testing.T) {
	issued := uuid.New()
	unissued := uuid.New()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/v1/candidates/" + issued.String():
			json.NewEncoder(w).Encode(candidatePayload(issued, "Ada", "Lovelace", "1990-02-03", "1234567"))
		case "/v1/candidates/" + unissued.String():
			json.NewEncoder(w).Encode(candidatePayload(unissued, "Grace", "Hopper", "1992-12-09", ""))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	newCached := func() *CachedClient {
		return NewCached(New(server.URL, "test-key"), cache.NewMemory(time.Minute), nil)
	}

	t.Run("issued record served from cache on second read", func(t *testing.T) {
		hits.Store(0)
		client := newCached()
		ctx := context.Background()

		first, err := client.GetCandidate(ctx, domain.CandidateID(issued))
		require.NoError(t, err)
		second, err := client.GetCandidate(ctx, domain.CandidateID(issued))
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("unissued record is never cached", func(t *testing.T) {
		hits.Store(0)
		client := newCached()
		ctx := context.Background()

		_, err := client.GetCandidate(ctx, domain.CandidateID(unissued))
		require.NoError(t, err)
		_, err = client.GetCandidate(ctx, domain.CandidateID(unissued))
		require.NoError(t, err)

		assert.Equal(t, int32(2), hits.Load(), "polling reads must observe the identifier appearing")
	})

	t.Run("cache failure falls through to the register", func(t *testing.T) {
		hits.Store(0)
		client := NewCached(New(server.URL, "test-key"), failingCache{}, nil)

		record, err := client.GetCandidate(context.Background(), domain.CandidateID(issued))
		require.NoError(t, err)
		assert.Equal(t, domain.TRN("1234567"), record.TRN)
		assert.Equal(t, int32(1), hits.Load())
	})
}

type failingCache struct{}

func (failingCache) GetCandidate(context.Context, domain.CandidateID) (*models.CandidateRecord, error) {
	return nil, assert.AnError
}

func (failingCache) SaveCandidate(context.Context, models.CandidateRecord) error {
	return assert.AnError
}

func (failingCache) InvalidateCandidate(context.Context, domain.CandidateID) error {
	return assert.AnError
}
