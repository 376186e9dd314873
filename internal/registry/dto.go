package registry

import (
	"fmt"
	"time"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type searchRequest struct {
	FirstName     string `json:"firstName,omitempty"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	NationalID    string `json:"nationalId,omitempty"`
	PriorRef      string `json:"priorRef,omitempty"`
	SecondarySlug string `json:"secondarySlug,omitempty"`
}

type searchResponse struct {
	Candidates []candidateDTO `json:"candidates"`
}

type createIdentityRequest struct {
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName"`
	DateOfBirth   string `json:"dateOfBirth"`
	NationalID    string `json:"nationalId,omitempty"`
	PriorRef      string `json:"priorRef,omitempty"`
	SecondarySlug string `json:"secondarySlug,omitempty"`
}

type createReviewTaskRequest struct {
	CandidateID string `json:"candidateId"`
	Description string `json:"description"`
	DueAt       string `json:"dueAt"`
}

type createReviewTaskResponse struct {
	ID string `json:"id"`
}

// candidateDTO mirrors the register's loosely typed candidate payload.
type candidateDTO struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	MiddleName          string `json:"middleName"`
	LastName            string `json:"lastName"`
	DateOfBirth         string `json:"dateOfBirth"`
	NationalID          string `json:"nationalId"`
	PriorRef            string `json:"priorRef"`
	SecondarySlug       string `json:"secondarySlug"`
	TRN                 string `json:"trn"`
	ActiveSanctions     bool   `json:"activeSanctions"`
	ActiveAwardDate     bool   `json:"activeAwardDate"`
	EarlyYearsAwardDate bool   `json:"earlyYearsAwardDate"`
}

// toRecord translates the upstream payload into the fixed-shape record the
// matching modules consume. A payload the engine cannot make sense of is an
// upstream fault, reported as unavailability rather than guessed around.
func (d candidateDTO) toRecord() (models.CandidateRecord, error) {
	id, err := domain.ParseCandidateID(d.ID)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("registry candidate id %q: %w", d.ID, sentinel.ErrUnavailable)
	}

	var dob time.Time
	if d.DateOfBirth != "" {
		dob, err = time.Parse("2006-01-02", d.DateOfBirth)
		if err != nil {
			return models.CandidateRecord{}, fmt.Errorf("registry candidate %s date of birth %q: %w", d.ID, d.DateOfBirth, sentinel.ErrUnavailable)
		}
	}

	var trn domain.TRN
	if d.TRN != "" {
		trn, err = domain.ParseTRN(d.TRN)
		if err != nil {
			return models.CandidateRecord{}, fmt.Errorf("registry candidate %s trn %q: %w", d.ID, d.TRN, sentinel.ErrUnavailable)
		}
	}

	var priorRef domain.TRN
	if d.PriorRef != "" {
		priorRef, err = domain.ParseTRN(d.PriorRef)
		if err != nil {
			return models.CandidateRecord{}, fmt.Errorf("registry candidate %s prior ref %q: %w", d.ID, d.PriorRef, sentinel.ErrUnavailable)
		}
	}

	return models.CandidateRecord{
		ID: id,
		Attributes: models.IdentityAttributes{
			FirstName:     d.FirstName,
			MiddleName:    d.MiddleName,
			LastName:      d.LastName,
			DateOfBirth:   dob,
			NationalID:    d.NationalID,
			PriorRef:      priorRef,
			SecondarySlug: d.SecondarySlug,
		},
		TRN: trn,
		Flags: models.RiskFlags{
			ActiveSanctions:     d.ActiveSanctions,
			ActiveAwardDate:     d.ActiveAwardDate,
			EarlyYearsAwardDate: d.EarlyYearsAwardDate,
		},
	}, nil
}
