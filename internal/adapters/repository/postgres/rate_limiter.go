package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/elections/internal/core/ports"
)

// ScopeAnonymize is the rate limit scope shared by every anonymization entry point.
const ScopeAnonymize = "anonymize"

type attemptLimiter struct {
	db          *sql.DB
	scope       string
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewAttemptLimiter counts attempts per subject in fixed windows stored in
// rate_limits, so every process sharing the database shares the quota.
func NewAttemptLimiter(db *sql.DB, scope string, maxAttempts int, window time.Duration, logger *slog.Logger) ports.RateLimiter {
	return newAttemptLimiter(db, scope, maxAttempts, window, logger)
}

func newAttemptLimiter(db *sql.DB, scope string, maxAttempts int, window time.Duration, logger *slog.Logger) *attemptLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &attemptLimiter{
		db:          db,
		scope:       scope,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		now:         time.Now,
	}
}

// Allow records one attempt for subject and reports whether it is within the
// quota of the current window. Refused attempts are counted too.
func (l *attemptLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	windowStart := l.now().UTC().Truncate(l.window)

	query := `
		INSERT INTO rate_limits (scope, subject, window_start, attempts)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (scope, subject, window_start)
		DO UPDATE SET attempts = rate_limits.attempts + 1
		RETURNING attempts
	`
	var attempts int
	if err := l.db.QueryRowContext(ctx, query, l.scope, subject, windowStart).Scan(&attempts); err != nil {
		return false, classify(l.logger, "failed to count attempt", err)
	}

	if attempts == 1 {
		// First attempt of a window: expired windows of this scope are no longer needed.
		_, err := l.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE scope = $1 AND window_start < $2`, l.scope, windowStart)
		if err != nil {
			l.logger.Warn("failed to prune rate limit windows", "scope", l.scope, "error", err)
		}
	}
	return attempts <= l.maxAttempts, nil
}
