// Package classify turns matched-attribute sets into an allocation decision.
// Pure domain logic in the style of a rule chain: strong-key certainty is
// checked first, then the core-four threshold.
package classify

import (
	"registrar/internal/identity/match"
	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

// coreThreshold is the number of core-four attributes that must agree before
// a candidate is considered a potential duplicate. Applied uniformly; there
// is no per-operation override.
const coreThreshold = 3

// Outcome is the classification of one submission against the registry.
type Outcome string

const (
	// OutcomeUnique: no existing identity found; safe to create and allocate.
	OutcomeUnique Outcome = "unique"
	// OutcomeUniqueAttach: exactly one candidate satisfies the strong key
	// (prior reference + date of birth); attach instead of creating.
	OutcomeUniqueAttach Outcome = "unique_attach"
	// OutcomePotentialDuplicate: allocation withheld pending human review.
	OutcomePotentialDuplicate Outcome = "potential_duplicate"
	// OutcomeConflict: two or more candidates independently satisfy the
	// strong key. Never auto-resolved.
	OutcomeConflict Outcome = "conflict"
)

// Result is the ephemeral classification product. It is consumed immediately
// by the allocation coordinator and never persisted.
type Result struct {
	Outcome   Outcome
	Candidate *models.CandidateRecord        // set for UniqueAttach and PotentialDuplicate
	Matched   []models.AttributeName         // matched set for the chosen candidate
	Conflicts []domain.CandidateID           // set for Conflict
}

// Classify decides the outcome for a submission given the candidate records
// under consideration and the matched-attribute set computed for each.
// candidates[i] corresponds to matches[i].
//
// Policy:
//   - ≥2 strong-key candidates → Conflict
//   - exactly 1 strong-key candidate → UniqueAttach
//   - otherwise, any candidate with ≥3 of the core four matched →
//     PotentialDuplicate against the best-scoring candidate
//   - otherwise → Unique
func Classify(candidates []models.CandidateRecord, matches [][]models.AttributeName) Result {
	var strong []int
	for i, m := range matches {
		if strongKey(m) {
			strong = append(strong, i)
		}
	}
	if len(strong) >= 2 {
		ids := make([]domain.CandidateID, len(strong))
		for j, i := range strong {
			ids[j] = candidates[i].ID
		}
		return Result{Outcome: OutcomeConflict, Conflicts: ids}
	}
	if len(strong) == 1 {
		i := strong[0]
		c := candidates[i]
		return Result{Outcome: OutcomeUniqueAttach, Candidate: &c, Matched: matches[i]}
	}

	best := -1
	for i, m := range matches {
		if match.CoreCount(m) < coreThreshold {
			continue
		}
		if best == -1 || better(candidates, matches, i, best) {
			best = i
		}
	}
	if best >= 0 {
		c := candidates[best]
		return Result{Outcome: OutcomePotentialDuplicate, Candidate: &c, Matched: matches[best]}
	}
	return Result{Outcome: OutcomeUnique}
}

// strongKey reports whether the matched set satisfies the strong key:
// previously-issued identifier plus date of birth.
func strongKey(matched []models.AttributeName) bool {
	return match.Contains(matched, models.AttributePriorRef) &&
		match.Contains(matched, models.AttributeDateOfBirth)
}

// better orders potential-duplicate candidates: more matched attributes wins,
// ties break on the lexically lowest candidate id so the choice is stable
// across runs.
func better(candidates []models.CandidateRecord, matches [][]models.AttributeName, i, j int) bool {
	if len(matches[i]) != len(matches[j]) {
		return len(matches[i]) > len(matches[j])
	}
	return candidates[i].ID.String() < candidates[j].ID.String()
}
