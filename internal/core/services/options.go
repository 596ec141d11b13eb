package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type Option func(*options)

type options struct {
	logger  *slog.Logger
	audit   ports.AuditSink
	metrics ports.VoteMetrics
	limiter ports.RateLimiter
	now     func() time.Time
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithAudit(audit ports.AuditSink) Option {
	return func(o *options) {
		if audit != nil {
			o.audit = audit
		}
	}
}

func WithMetrics(metrics ports.VoteMetrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithRateLimiter throttles dangerous operations per actor.
func WithRateLimiter(limiter ports.RateLimiter) Option {
	return func(o *options) {
		if limiter != nil {
			o.limiter = limiter
		}
	}
}

// WithClock overrides the time source used for voting window checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  slog.Default(),
		audit:   noopAudit{},
		metrics: noopMetrics{},
		limiter: allowAll{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, ports.AuditEvent) {}

type noopMetrics struct{}

func (noopMetrics) ObserveVote(string, time.Duration) {}
func (noopMetrics) AddAnonymized(int64)               {}
func (noopMetrics) ObserveTransition(string)          {}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }
