package models

import (
	"regexp"
	"strings"
	"time"
)

// FailedReason enumerates validation problems with submitted attributes.
// Reasons are collected into a set so a caller sees every problem at once
// instead of fixing them one at a time.
type FailedReason string

const (
	ReasonFirstNameMissing    FailedReason = "first_name_missing"
	ReasonLastNameMissing     FailedReason = "last_name_missing"
	ReasonDateOfBirthMissing  FailedReason = "date_of_birth_missing"
	ReasonDateOfBirthInFuture FailedReason = "date_of_birth_in_future"
	ReasonNationalIDMalformed FailedReason = "national_id_malformed"
)

var nationalIDPattern = regexp.MustCompile(`^[A-Za-z]{2}\s?\d{2}\s?\d{2}\s?\d{2}\s?[A-Za-z]$`)

// Validate checks the submitted attributes and returns every failed reason.
// An empty result means the bundle may enter matching. The now parameter is
// injected so callers control the clock.
func (a IdentityAttributes) Validate(now time.Time) []FailedReason {
	var reasons []FailedReason
	if strings.TrimSpace(a.FirstName) == "" {
		reasons = append(reasons, ReasonFirstNameMissing)
	}
	if strings.TrimSpace(a.LastName) == "" {
		reasons = append(reasons, ReasonLastNameMissing)
	}
	switch {
	case a.DateOfBirth.IsZero():
		reasons = append(reasons, ReasonDateOfBirthMissing)
	case a.DateOfBirth.After(now):
		reasons = append(reasons, ReasonDateOfBirthInFuture)
	}
	if id := strings.TrimSpace(a.NationalID); id != "" && !nationalIDPattern.MatchString(id) {
		reasons = append(reasons, ReasonNationalIDMalformed)
	}
	return reasons
}

// ReasonStrings converts a reason set to plain strings for error details.
func ReasonStrings(reasons []FailedReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
