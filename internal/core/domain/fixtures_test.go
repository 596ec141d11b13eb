package domain

import (
	"time"

	"github.com/google/uuid"
)

func singleChoice() *Election {
	return &Election{
		ID:            uuid.MustParse("6f1c2d7e-3b1a-4c55-9a43-0d2f6c1b9e01"),
		Title:         "Board seat",
		Question:      "Approve the proposal?",
		VotingType:    VotingTypeSingleChoice,
		MaxSelections: 1,
		Answers:       []Answer{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}},
		Eligibility:   EligibilityMembers,
		Status:        StatusPublished,
	}
}

func multiChoice(max int) *Election {
	return &Election{
		ID:            uuid.MustParse("0b9e36a4-5f3c-4d7c-8a1f-2e4b6c8d0f12"),
		Title:         "Committee",
		Question:      "Pick your candidates",
		VotingType:    VotingTypeMultiChoice,
		MaxSelections: max,
		Answers: []Answer{
			{ID: "a", Text: "Alice"},
			{ID: "b", Text: "Bob"},
			{ID: "c", Text: "Carol"},
			{ID: "d", Text: "Dan"},
		},
		Eligibility: EligibilityMembers,
		Status:      StatusPublished,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
