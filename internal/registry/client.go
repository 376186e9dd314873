// Package registry adapts the authoritative register's JSON API. Loosely
// typed upstream payloads are translated into fixed-shape candidate records
// at this boundary; nothing upstream-shaped leaks into matching.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Client calls the register over HTTP. All read operations return candidate
// records; transport and upstream failures surface as ErrUnavailable so the
// coordinator can leave the submission retryable.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a registry client for the given base URL and API key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindByAttributes searches the register for candidates resembling the
// submission. Name+date and national-identifier searches run concurrently
// and the union is deduplicated by candidate ID.
func (c *Client) FindByAttributes(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error) {
	queries := []searchRequest{{
		FirstName:   attrs.FirstName,
		MiddleName:  attrs.MiddleName,
		LastName:    attrs.LastName,
		DateOfBirth: attrs.Value(models.AttributeDateOfBirth),
	}}
	if attrs.NationalID != "" {
		queries = append(queries, searchRequest{NationalID: attrs.NationalID})
	}

	results := make([][]models.CandidateRecord, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			records, err := c.search(gctx, q)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[domain.CandidateID]struct{})
	var merged []models.CandidateRecord
	for _, records := range results {
		for _, r := range records {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// FindByRefAndSlug searches by previously-issued reference plus the caller's
// opaque secondary slug.
func (c *Client) FindByRefAndSlug(ctx context.Context, ref domain.TRN, slug string) ([]models.CandidateRecord, error) {
	return c.search(ctx, searchRequest{PriorRef: ref.String(), SecondarySlug: slug})
}

// FindByRefAndDOB searches by previously-issued reference plus date of birth.
func (c *Client) FindByRefAndDOB(ctx context.Context, ref domain.TRN, dob time.Time) ([]models.CandidateRecord, error) {
	return c.search(ctx, searchRequest{PriorRef: ref.String(), DateOfBirth: dob.Format("2006-01-02")})
}

// GetCandidate fetches one candidate record. Returns ErrNotFound when the
// register has no such record.
func (c *Client) GetCandidate(ctx context.Context, id domain.CandidateID) (*models.CandidateRecord, error) {
	var dto candidateDTO
	if err := c.do(ctx, http.MethodGet, "/v1/candidates/"+id.String(), nil, &dto); err != nil {
		return nil, err
	}
	record, err := dto.toRecord()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateIdentity registers a new identity. The register allocates the
// lifetime identifier; the returned record may carry an empty identifier if
// allocation is still in flight upstream.
func (c *Client) CreateIdentity(ctx context.Context, attrs models.IdentityAttributes) (*models.CandidateRecord, error) {
	req := createIdentityRequest{
		FirstName:     attrs.FirstName,
		MiddleName:    attrs.MiddleName,
		LastName:      attrs.LastName,
		DateOfBirth:   attrs.Value(models.AttributeDateOfBirth),
		NationalID:    attrs.NationalID,
		PriorRef:      attrs.PriorRef.String(),
		SecondarySlug: attrs.SecondarySlug,
	}
	var dto candidateDTO
	if err := c.do(ctx, http.MethodPost, "/v1/candidates", req, &dto); err != nil {
		return nil, err
	}
	record, err := dto.toRecord()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateReviewTask hands a review task to the register's task queue.
func (c *Client) CreateReviewTask(ctx context.Context, task models.ReviewTask) (domain.TaskID, error) {
	req := createReviewTaskRequest{
		CandidateID: task.CandidateID.String(),
		Description: task.Description,
		DueAt:       task.DueAt.UTC().Format(time.RFC3339),
	}
	var resp createReviewTaskResponse
	if err := c.do(ctx, http.MethodPost, "/v1/review-tasks", req, &resp); err != nil {
		return domain.TaskID{}, err
	}
	taskID, err := domain.ParseTaskID(resp.ID)
	if err != nil {
		return domain.TaskID{}, fmt.Errorf("registry returned malformed task id %q: %w", resp.ID, sentinel.ErrUnavailable)
	}
	return taskID, nil
}

func (c *Client) search(ctx context.Context, req searchRequest) ([]models.CandidateRecord, error) {
	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/candidates/search", req, &resp); err != nil {
		return nil, err
	}
	records := make([]models.CandidateRecord, 0, len(resp.Candidates))
	for _, dto := range resp.Candidates {
		record, err := dto.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode registry request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry %s %s: %w: %w", method, path, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("registry %s %s: %w", method, path, sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.WarnContext(ctx, "registry call failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("registry %s %s: status %d: %w", method, path, resp.StatusCode, sentinel.ErrUnavailable)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode registry response: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
