package domain

import (
	"fmt"
	"strings"
)

// ValidateAnswers checks a submission against the election's voting rules.
// Checks run shape, membership, cardinality, uniqueness so the reason is deterministic.
func ValidateAnswers(answerIDs []string, e *Election) (bool, string) {
	if len(answerIDs) == 0 {
		return false, "no answers selected"
	}

	var invalid []string
	for _, id := range answerIDs {
		if _, ok := e.Answer(id); !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return false, "invalid answer IDs: " + strings.Join(invalid, ", ")
	}

	switch e.VotingType {
	case VotingTypeSingleChoice:
		if len(answerIDs) != 1 {
			return false, "single-choice elections require exactly 1 selection"
		}
	case VotingTypeMultiChoice:
		if len(answerIDs) > e.MaxSelections {
			return false, fmt.Sprintf("too many selections (max: %d, got: %d)", e.MaxSelections, len(answerIDs))
		}
	default:
		return false, "unsupported voting type"
	}

	seen := make(map[string]struct{}, len(answerIDs))
	for _, id := range answerIDs {
		if _, dup := seen[id]; dup {
			return false, "duplicate answer selections are not allowed"
		}
		seen[id] = struct{}{}
	}

	return true, ""
}
