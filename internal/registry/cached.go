package registry

import (
	"context"
	"log/slog"

	"registrar/internal/identity/models"
	"registrar/internal/registry/cache"
	"registrar/pkg/domain"
)

// CachedClient fronts GetCandidate with a read-through cache. Search and
// write operations pass straight through; only the polling read path is hot
// enough to cache, and a stale search result could change a classification.
type CachedClient struct {
	*Client
	cache  cache.Cache
	logger *slog.Logger
}

// NewCached wraps a client with a candidate cache.
func NewCached(client *Client, c cache.Cache, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{Client: client, cache: c, logger: logger}
}

// GetCandidate serves from cache when possible. Records without an issued
// identifier are never cached: the whole point of the polling read is to
// observe the identifier appearing.
func (c *CachedClient) GetCandidate(ctx context.Context, id domain.CandidateID) (*models.CandidateRecord, error) {
	cached, err := c.cache.GetCandidate(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "candidate cache read failed", "candidate_id", id.String(), "error", err)
	} else if cached != nil {
		return cached, nil
	}

	record, err := c.Client.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.TRN.IsZero() {
		if err := c.cache.SaveCandidate(ctx, *record); err != nil {
			c.logger.WarnContext(ctx, "candidate cache write failed", "candidate_id", id.String(), "error", err)
		}
	}
	return record, nil
}
