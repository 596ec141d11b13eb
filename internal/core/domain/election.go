package domain

import (
	"time"

	"github.com/google/uuid"
)

type VotingType string

const (
	VotingTypeSingleChoice VotingType = "single-choice"
	VotingTypeMultiChoice  VotingType = "multi-choice"
)

func (t VotingType) Valid() bool {
	return t == VotingTypeSingleChoice || t == VotingTypeMultiChoice
}

type Eligibility string

const (
	EligibilityAll     Eligibility = "all"
	EligibilityMembers Eligibility = "members"
	EligibilityAdmins  Eligibility = "admins"
)

func (e Eligibility) Valid() bool {
	switch e {
	case EligibilityAll, EligibilityMembers, EligibilityAdmins:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusPaused    Status = "paused"
	StatusClosed    Status = "closed"
	StatusArchived  Status = "archived"
)

// Ended reports whether voting is over for good.
func (s Status) Ended() bool {
	return s == StatusClosed || s == StatusArchived
}

type Election struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Question       string      `json:"question"`
	VotingType     VotingType  `json:"voting_type"`
	MaxSelections  int         `json:"max_selections"`
	Answers        []Answer    `json:"answers"`
	Eligibility    Eligibility `json:"eligibility"`
	Status         Status      `json:"status"`
	ScheduledStart *time.Time  `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time  `json:"scheduled_end,omitempty"`
	Hidden         bool        `json:"hidden"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Answer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Answer returns the answer with the given id.
func (e *Election) Answer(id string) (Answer, bool) {
	for _, a := range e.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// Action is an administrative lifecycle transition.
type Action string

const (
	ActionPublish Action = "publish"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionClose   Action = "close"
	ActionArchive Action = "archive"
)

var transitions = map[Action]struct {
	from []Status
	to   Status
}{
	ActionPublish: {from: []Status{StatusDraft}, to: StatusPublished},
	ActionPause:   {from: []Status{StatusPublished}, to: StatusPaused},
	ActionResume:  {from: []Status{StatusPaused}, to: StatusPublished},
	ActionClose:   {from: []Status{StatusPublished, StatusPaused}, to: StatusClosed},
	ActionArchive: {from: []Status{StatusClosed}, to: StatusArchived},
}

// NextStatus applies action to current and returns the resulting status.
func NextStatus(current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", BadRequest("unknown action: " + string(action))
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return "", Conflict("cannot " + string(action) + " an election that is " + string(current))
}

// ValidateDefinition checks a new election before it is stored.
func ValidateDefinition(e *Election) error {
	if e.Title == "" {
		return BadRequest("title is required")
	}
	if e.Question == "" {
		return BadRequest("question is required")
	}
	if !e.VotingType.Valid() {
		return BadRequest("unknown voting type: " + string(e.VotingType))
	}
	if !e.Eligibility.Valid() {
		return BadRequest("unknown eligibility: " + string(e.Eligibility))
	}
	if len(e.Answers) < 2 {
		return BadRequest("at least two answers are required")
	}

	seen := make(map[string]struct{}, len(e.Answers))
	for _, a := range e.Answers {
		if a.ID == "" || a.Text == "" {
			return BadRequest("answers need an id and a text")
		}
		if _, dup := seen[a.ID]; dup {
			return BadRequest("duplicate answer id: " + a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	switch e.VotingType {
	case VotingTypeSingleChoice:
		if e.MaxSelections != 1 {
			return BadRequest("single-choice elections allow exactly 1 selection")
		}
	case VotingTypeMultiChoice:
		if e.MaxSelections < 1 || e.MaxSelections > len(e.Answers) {
			return BadRequest("max_selections must be between 1 and the number of answers")
		}
	}

	if e.ScheduledStart != nil && e.ScheduledEnd != nil && !e.ScheduledEnd.After(*e.ScheduledStart) {
		return BadRequest("scheduled_end must be after scheduled_start")
	}
	return nil
}
