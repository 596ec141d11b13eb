package ports

import (
	"context"
	"time"
)

// AuditEvent is a write-only record of an administrative or voting action.
type AuditEvent struct {
	Action     string
	Actor      string
	ElectionID string
	Outcome    string
	Details    map[string]any
	Dangerous  bool
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

type VoteMetrics interface {
	ObserveVote(outcome string, elapsed time.Duration)
	AddAnonymized(count int64)
	ObserveTransition(action string)
}
