package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	codeQueryCanceled    = "57014"
	codeSerialization    = "40001"
	codeDeadlock         = "40P01"
	codeTooManyConns     = "53300"
	codeStringTooLong    = "22001"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to postgres and verifies the connection.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migration returns the named migration file, e.g. "0001_elections.up".
func Migration(name string) (string, error) {
	files, err := fs.Glob(migrations, "migrations/*"+name+".sql")
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", fmt.Errorf("migration %q not found", name)
	}
	content, err := migrations.ReadFile(files[0])
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Migrate applies every up migration in file name order.
func Migrate(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		content, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", f, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", f, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

func isStringTooLong(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeStringTooLong
}

// isTransient reports errors a caller may retry: lock timeouts, cancellations,
// serialization failures and lost connections.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeLockNotAvailable, codeQueryCanceled, codeSerialization, codeDeadlock, codeTooManyConns:
			return true
		}
		// class 08: connection exception
		return strings.HasPrefix(string(pqErr.Code), "08")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify turns driver errors into domain errors. Domain errors pass through.
func classify(logger *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if isStringTooLong(err) {
		return domain.BadRequest("value is too long")
	}
	if isTransient(err) {
		logger.Info("database unavailable", "event", "elections_db_unavailable", "op", op, "error", err)
		return domain.Unavailable(domain.ReasonLockTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
