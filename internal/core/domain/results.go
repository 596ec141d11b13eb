package domain

import (
	"math"

	"github.com/google/uuid"
)

// ElectionResults is an aggregate tally. It never carries voter identities,
// ballot ids or submission times.
type ElectionResults struct {
	ElectionID   uuid.UUID      `json:"election_id"`
	Status       Status         `json:"status"`
	TotalBallots int64          `json:"total_ballots"`
	TotalVoters  int64          `json:"total_voters"`
	Answers      []AnswerResult `json:"answers"`
}

type AnswerResult struct {
	AnswerID   string  `json:"answer_id"`
	Text       string  `json:"text"`
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// Tally is a raw per-answer count as read from the store.
type Tally struct {
	Counts      map[string]int64
	TotalVoters int64
}

// BuildResults lays the tally over the election's answers, in election order.
func BuildResults(e *Election, t Tally) ElectionResults {
	var total int64
	for _, a := range e.Answers {
		total += t.Counts[a.ID]
	}

	res := ElectionResults{
		ElectionID:   e.ID,
		Status:       e.Status,
		TotalBallots: total,
		TotalVoters:  t.TotalVoters,
		Answers:      make([]AnswerResult, 0, len(e.Answers)),
	}
	for _, a := range e.Answers {
		count := t.Counts[a.ID]
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(count)/float64(total)*10000) / 100
		}
		res.Answers = append(res.Answers, AnswerResult{
			AnswerID:   a.ID,
			Text:       a.Text,
			VoteCount:  count,
			Percentage: percentage,
		})
	}
	return res
}
