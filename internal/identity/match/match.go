// Package match implements the pure attribute comparison underpinning
// duplicate detection. No I/O, no clock, fully deterministic.
package match

import (
	"strings"

	"registrar/internal/identity/models"
)

// Compare returns the set of identity attributes that agree between two
// bundles, in canonical order (core four first, then national identifier,
// then previously-issued reference).
//
// Names compare case-insensitively after whitespace trimming; dates and
// identifiers compare exactly. An absent value on either side never counts
// as a match.
func Compare(a, b models.IdentityAttributes) []models.AttributeName {
	var matched []models.AttributeName
	if namesEqual(a.FirstName, b.FirstName) {
		matched = append(matched, models.AttributeFirstName)
	}
	if namesEqual(a.MiddleName, b.MiddleName) {
		matched = append(matched, models.AttributeMiddleName)
	}
	if namesEqual(a.LastName, b.LastName) {
		matched = append(matched, models.AttributeLastName)
	}
	if datesEqual(a, b) {
		matched = append(matched, models.AttributeDateOfBirth)
	}
	if identifiersEqual(a.NationalID, b.NationalID) {
		matched = append(matched, models.AttributeNationalID)
	}
	if !a.PriorRef.IsZero() && a.PriorRef == b.PriorRef {
		matched = append(matched, models.AttributePriorRef)
	}
	return matched
}

// CoreCount returns how many of the matched attributes belong to the core
// four. National identifier and prior reference never count toward the
// threshold; they are tie-breaker signals only.
func CoreCount(matched []models.AttributeName) int {
	n := 0
	for _, name := range matched {
		if name.IsCore() {
			n++
		}
	}
	return n
}

// Contains reports whether the matched set includes the named attribute.
func Contains(matched []models.AttributeName, name models.AttributeName) bool {
	for _, m := range matched {
		if m == name {
			return true
		}
	}
	return false
}

func namesEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func datesEqual(a, b models.IdentityAttributes) bool {
	if a.DateOfBirth.IsZero() || b.DateOfBirth.IsZero() {
		return false
	}
	ay, am, ad := a.DateOfBirth.Date()
	by, bm, bd := b.DateOfBirth.Date()
	return ay == by && am == bm && ad == bd
}

func identifiersEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return a == b
}
