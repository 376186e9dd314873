package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

const candidateKeyPrefix = "registry:candidate:"

// Redis is a shared TTL cache for multi-instance deployments.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed candidate cache. The client lifecycle
// is managed externally.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// cachedCandidate is the stored envelope. Kept separate from the adapter's
// wire DTO so register API changes never invalidate cached payload parsing.
type cachedCandidate struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"first_name"`
	MiddleName          string    `json:"middle_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         time.Time `json:"date_of_birth"`
	NationalID          string    `json:"national_id"`
	PriorRef            string    `json:"prior_ref"`
	SecondarySlug       string    `json:"secondary_slug"`
	TRN                 string    `json:"trn"`
	ActiveSanctions     bool      `json:"active_sanctions"`
	ActiveAwardDate     bool      `json:"active_award_date"`
	EarlyYearsAwardDate bool      `json:"early_years_award_date"`
}

func (r *Redis) GetCandidate(ctx context.Context, id domain.CandidateID) (*models.CandidateRecord, error) {
	payload, err := r.client.Get(ctx, candidateKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached candidate: %w", err)
	}

	var stored cachedCandidate
	if err := json.Unmarshal(payload, &stored); err != nil {
		// Treat a corrupt entry as a miss; the read-through will overwrite it.
		return nil, nil
	}
	record, err := stored.toRecord()
	if err != nil {
		return nil, nil
	}
	return &record, nil
}

func (r *Redis) SaveCandidate(ctx context.Context, record models.CandidateRecord) error {
	payload, err := json.Marshal(cachedCandidate{
		ID:                  record.ID.String(),
		FirstName:           record.Attributes.FirstName,
		MiddleName:          record.Attributes.MiddleName,
		LastName:            record.Attributes.LastName,
		DateOfBirth:         record.Attributes.DateOfBirth,
		NationalID:          record.Attributes.NationalID,
		PriorRef:            record.Attributes.PriorRef.String(),
		SecondarySlug:       record.Attributes.SecondarySlug,
		TRN:                 record.TRN.String(),
		ActiveSanctions:     record.Flags.ActiveSanctions,
		ActiveAwardDate:     record.Flags.ActiveAwardDate,
		EarlyYearsAwardDate: record.Flags.EarlyYearsAwardDate,
	})
	if err != nil {
		return fmt.Errorf("encode cached candidate: %w", err)
	}
	if err := r.client.Set(ctx, candidateKeyPrefix+record.ID.String(), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cached candidate: %w", err)
	}
	return nil
}

func (r *Redis) InvalidateCandidate(ctx context.Context, id domain.CandidateID) error {
	if err := r.client.Del(ctx, candidateKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("invalidate cached candidate: %w", err)
	}
	return nil
}

func (c cachedCandidate) toRecord() (models.CandidateRecord, error) {
	id, err := domain.ParseCandidateID(c.ID)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	var trn domain.TRN
	if c.TRN != "" {
		if trn, err = domain.ParseTRN(c.TRN); err != nil {
			return models.CandidateRecord{}, err
		}
	}
	var priorRef domain.TRN
	if c.PriorRef != "" {
		if priorRef, err = domain.ParseTRN(c.PriorRef); err != nil {
			return models.CandidateRecord{}, err
		}
	}

	return models.CandidateRecord{
		ID: id,
		Attributes: models.IdentityAttributes{
			FirstName:     c.FirstName,
			MiddleName:    c.MiddleName,
			LastName:      c.LastName,
			DateOfBirth:   c.DateOfBirth,
			NationalID:    c.NationalID,
			PriorRef:      priorRef,
			SecondarySlug: c.SecondarySlug,
		},
		TRN: trn,
		Flags: models.RiskFlags{
			ActiveSanctions:     c.ActiveSanctions,
			ActiveAwardDate:     c.ActiveAwardDate,
			EarlyYearsAwardDate: c.EarlyYearsAwardDate,
		},
	}, nil
}
