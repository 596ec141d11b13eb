package audit

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vncsmyrnk/elections/internal/core/ports"
)

// SlogSink writes audit events as structured log lines. Dangerous events
// are logged at warn so they survive a raised log level.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With("component", "audit")}
}

func (s *SlogSink) Record(ctx context.Context, event ports.AuditEvent) {
	level := slog.LevelInfo
	msg := "audit " + event.Action
	if event.Dangerous {
		level = slog.LevelWarn
		msg = "DANGEROUS: " + event.Action
	}

	attrs := []any{
		"event", "elections_audit",
		"action", event.Action,
		"actor", event.Actor,
		"election_id", event.ElectionID,
		"outcome", event.Outcome,
		"dangerous", event.Dangerous,
	}
	if len(event.Details) > 0 {
		keys := make([]string, 0, len(event.Details))
		for k := range event.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		details := make([]any, 0, len(keys))
		for _, k := range keys {
			details = append(details, slog.Any(k, event.Details[k]))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}

	s.logger.Log(ctx, level, msg, attrs...)
}
