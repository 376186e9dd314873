// Package review builds the human-readable flag raised when automatic
// allocation is withheld. The text is deliberately deterministic: the same
// matched attributes and risk flags always produce byte-identical output so
// review artifacts are testable and auditable.
package review

import (
	"strings"
	"time"

	"registrar/internal/identity/match"
	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// DueAfter is how long a reviewer has before the task is overdue.
const DueAfter = 24 * time.Hour

const header = "Potential duplicate\nMatched on\n"

// Risk clauses appear after the matched attributes in this fixed order,
// one clause per set flag, each terminated by a line break.
const (
	clauseSanctions  = "Matched record has active sanctions\n"
	clauseAward      = "Matched record has an active award date\n"
	clauseEarlyYears = "Matched record has an early years award date\n"
)

// Build constructs the review task for a withheld submission. matched is the
// attribute set that agreed between the submission and the candidate; only
// core-four attributes appear in the text, in canonical order, with the
// submitted values quoted.
func Build(candidateID domain.CandidateID, matched []models.AttributeName, attrs models.IdentityAttributes, flags models.RiskFlags, now time.Time) models.ReviewTask {
	var b strings.Builder
	b.WriteString(header)
	for _, name := range models.CoreAttributes {
		if !match.Contains(matched, name) {
			continue
		}
		b.WriteString("  - ")
		b.WriteString(name.Label())
		b.WriteString(": '")
		b.WriteString(attrs.Value(name))
		b.WriteString("'\n")
	}
	if flags.ActiveSanctions {
		b.WriteString(clauseSanctions)
	}
	if flags.ActiveAwardDate {
		b.WriteString(clauseAward)
	}
	if flags.EarlyYearsAwardDate {
		b.WriteString(clauseEarlyYears)
	}
	return models.ReviewTask{
		CandidateID: candidateID,
		Description: b.String(),
		DueAt:       now.Add(DueAfter),
	}
}
