package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityTokenHash fills the legacy token_hash column for identity based votes.
var IdentityTokenHash = strings.Repeat("0", 64)

// Ballot is one selected answer of one vote. A multi-choice vote stores one
// ballot per answer. MemberUID and TokenHash never leave the service.
type Ballot struct {
	ID          uuid.UUID `json:"id"`
	ElectionID  uuid.UUID `json:"election_id"`
	MemberUID   string    `json:"-"`
	AnswerID    string    `json:"answer_id"`
	AnswerText  string    `json:"answer_text"`
	TokenHash   string    `json:"-"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmissionTime coarsens t to the minute so ballots cannot be matched to request logs.
func SubmissionTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
