package httptransport

import (
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// submitRequest is the caller-facing submission payload.
type submitRequest struct {
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	DateOfBirth   string `json:"dateOfBirth"`
	NationalID    string `json:"nationalId"`
	PriorRef      string `json:"priorRef"`
	SecondarySlug string `json:"secondarySlug"`
}

// toAttributes translates the payload into the typed attribute bundle.
// Shape problems (unparseable date, malformed reference) are rejected here;
// completeness is the service's concern.
func (r submitRequest) toAttributes() (models.IdentityAttributes, error) {
	attrs := models.IdentityAttributes{
		FirstName:     r.FirstName,
		MiddleName:    r.MiddleName,
		LastName:      r.LastName,
		NationalID:    r.NationalID,
		SecondarySlug: r.SecondarySlug,
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", r.DateOfBirth)
		if err != nil {
			return models.IdentityAttributes{}, dErrors.New(dErrors.CodeInvalidInput,
				"dateOfBirth must be formatted YYYY-MM-DD").WithDetails("date_of_birth_malformed")
		}
		attrs.DateOfBirth = dob
	}
	if r.PriorRef != "" {
		ref, err := domain.ParseTRN(r.PriorRef)
		if err != nil {
			return models.IdentityAttributes{}, dErrors.New(dErrors.CodeInvalidInput,
				"priorRef must be exactly seven digits").WithDetails("prior_ref_malformed")
		}
		attrs.PriorRef = ref
	}
	return attrs, nil
}
