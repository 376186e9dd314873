package service

import (
	"context"
	"time"

	"registrar/internal/audit"
	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// RegistryClient is everything the coordinator needs from the authoritative
// register. The lookup chain consumes the strong-key slice of this interface.
type RegistryClient interface {
	FindByAttributes(ctx context.Context, attrs models.IdentityAttributes) ([]models.CandidateRecord, error)
	FindByRefAndSlug(ctx context.Context, ref domain.TRN, slug string) ([]models.CandidateRecord, error)
	FindByRefAndDOB(ctx context.Context, ref domain.TRN, dob time.Time) ([]models.CandidateRecord, error)
	GetCandidate(ctx context.Context, id domain.CandidateID) (*models.CandidateRecord, error)
	CreateIdentity(ctx context.Context, attrs models.IdentityAttributes) (*models.CandidateRecord, error)
	CreateReviewTask(ctx context.Context, task models.ReviewTask) (domain.TaskID, error)
}

// AuditPublisher delivers resolution events. Failures are logged, never
// propagated.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event) error
}
