package models

import (
	"strings"
	"time"

	"registrar/pkg/domain"
)

// AttributeName names one identity attribute considered during matching.
type AttributeName string

const (
	AttributeFirstName   AttributeName = "first_name"
	AttributeMiddleName  AttributeName = "middle_name"
	AttributeLastName    AttributeName = "last_name"
	AttributeDateOfBirth AttributeName = "date_of_birth"
	AttributeNationalID  AttributeName = "national_id"
	AttributePriorRef    AttributeName = "prior_ref"
)

// CoreAttributes is the canonical order of the core-four matching signal.
// Review text and matched-attribute lists always follow this order.
var CoreAttributes = []AttributeName{
	AttributeFirstName,
	AttributeMiddleName,
	AttributeLastName,
	AttributeDateOfBirth,
}

// Label returns the human-readable label used in review task text.
func (a AttributeName) Label() string {
	switch a {
	case AttributeFirstName:
		return "First name"
	case AttributeMiddleName:
		return "Middle name"
	case AttributeLastName:
		return "Last name"
	case AttributeDateOfBirth:
		return "Date of birth"
	case AttributeNationalID:
		return "National identifier"
	case AttributePriorRef:
		return "Previously issued reference"
	}
	return string(a)
}

// IsCore reports whether the attribute counts toward the core-four threshold.
func (a AttributeName) IsCore() bool {
	switch a {
	case AttributeFirstName, AttributeMiddleName, AttributeLastName, AttributeDateOfBirth:
		return true
	}
	return false
}

// IdentityAttributes is the partial, possibly noisy description of a person
// submitted for matching. It is an immutable value bundle: names compare
// case-insensitively after trimming, dates and identifiers compare exactly,
// and an absent value never matches anything.
type IdentityAttributes struct {
	FirstName   string
	MiddleName  string
	LastName    string
	DateOfBirth time.Time // date precision only; zero means absent
	NationalID  string    // optional
	PriorRef    domain.TRN // optional previously-issued identifier
	// SecondarySlug is an opaque secondary key some callers supply alongside
	// PriorRef. Only used by the strong-key lookup chain, never matched on.
	SecondarySlug string
}

// Value returns the submitted value for an attribute, formatted the way
// review task text presents it. Dates render as YYYY-MM-DD.
func (a IdentityAttributes) Value(name AttributeName) string {
	switch name {
	case AttributeFirstName:
		return strings.TrimSpace(a.FirstName)
	case AttributeMiddleName:
		return strings.TrimSpace(a.MiddleName)
	case AttributeLastName:
		return strings.TrimSpace(a.LastName)
	case AttributeDateOfBirth:
		if a.DateOfBirth.IsZero() {
			return ""
		}
		return a.DateOfBirth.Format("2006-01-02")
	case AttributeNationalID:
		return strings.TrimSpace(a.NationalID)
	case AttributePriorRef:
		return a.PriorRef.String()
	}
	return ""
}
