// Package domain defines the typed identifiers shared across modules.
// Wrapping raw strings and UUIDs in distinct types keeps the compiler from
// letting a caller id slip into a slot that expects a candidate id.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "registrar/pkg/domain-errors"
)

// CandidateID identifies a record held by the authoritative registry.
// The registry owns the record; this engine only references it.
type CandidateID uuid.UUID

// TaskID identifies a review task handed off to the registry's task queue.
type TaskID uuid.UUID

// CallerID identifies the external system submitting requests. Assigned
// out of band; opaque to the engine.
type CallerID string

// RequestID is the caller-supplied token naming one logical submission.
// (CallerID, RequestID) is the idempotency key for the request ledger.
type RequestID string

// TRN is the unique lifetime reference number allocated to a person's
// professional record: exactly seven digits. The zero value means
// "not yet issued".
type TRN string

var (
	trnPattern       = regexp.MustCompile(`^\d{7}$`)
	requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
)

// ParseCandidateID validates and converts a string to a CandidateID.
// IDs must be valid, non-nil UUIDs.
func ParseCandidateID(s string) (CandidateID, error) {
	parsed, err := parseUUID(s, "candidate id")
	return CandidateID(parsed), err
}

// ParseTaskID validates and converts a string to a TaskID.
func ParseTaskID(s string) (TaskID, error) {
	parsed, err := parseUUID(s, "task id")
	return TaskID(parsed), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return parsed, nil
}

// ParseCallerID validates a caller identifier. Callers are opaque short
// tokens; reject empties and anything long enough to smell like payload.
func ParseCallerID(s string) (CallerID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller id is required")
	}
	if len(s) > 100 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller id exceeds 100 characters")
	}
	return CallerID(s), nil
}

// ParseRequestID validates a caller-supplied request identifier. The token is
// a URL path segment on the caller surface, so the charset is restricted.
func ParseRequestID(s string) (RequestID, error) {
	if !requestIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "request id must be 1-100 characters of [A-Za-z0-9._-]")
	}
	return RequestID(s), nil
}

// ParseTRN validates an issued reference number.
func ParseTRN(s string) (TRN, error) {
	if !trnPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "trn must be exactly seven digits")
	}
	return TRN(s), nil
}

func (c CandidateID) String() string { return uuid.UUID(c).String() }
func (t TaskID) String() string      { return uuid.UUID(t).String() }

// MarshalText renders the id in canonical UUID form. Defined types over
// uuid.UUID do not inherit its marshalers, and without these a JSON payload
// would carry the raw sixteen-byte array.
func (c CandidateID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CandidateID) UnmarshalText(text []byte) error {
	parsed, err := ParseCandidateID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (t TaskID) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TaskID) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskID(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
func (c CallerID) String() string    { return string(c) }
func (r RequestID) String() string   { return string(r) }
func (t TRN) String() string         { return string(t) }

// IsZero reports whether the TRN has not been issued.
func (t TRN) IsZero() bool { return t == "" }
