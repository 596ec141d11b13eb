package integration

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/elections/internal/adapters/audit"
	httpadapter "github.com/vncsmyrnk/elections/internal/adapters/handler/http"
	"github.com/vncsmyrnk/elections/internal/adapters/metrics"
	"github.com/vncsmyrnk/elections/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/elections/internal/core/services"
)

const (
	jwtSecret         = "test-secret"
	salt              = "test-salt"
	anonymizeAttempts = 5
)

type TestApp struct {
	DB     *sql.DB
	Server *httptest.Server
	Client *http.Client
}

func setupPostgresContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	db, err := postgres.Open(ctx, setupPostgresContainer(ctx, t), postgres.PoolConfig{MaxOpenConns: 16})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.Migrate(ctx, db))

	registry := prometheus.NewRegistry()
	opts := []services.Option{
		services.WithAudit(audit.NewSlogSink(nil)),
		services.WithMetrics(metrics.NewVoteMetrics(registry)),
	}
	electionRepo := postgres.NewElectionRepository(db, 0, nil)
	voteStore := postgres.NewVoteStore(db, 0, nil)
	electionService := services.NewElectionService(electionRepo, opts...)

	resp := httpadapter.NewResponder(nil, false)
	handler := httpadapter.NewHandler(httpadapter.RouterConfig{
		Gatherer:    registry,
		HealthCheck: db.PingContext,
	}, httpadapter.Handlers{
		Auth:      httpadapter.NewAuthenticator([]byte(jwtSecret), resp),
		Elections: httpadapter.NewElectionHandler(electionService, services.NewResultService(electionRepo, postgres.NewResultRepository(db, nil), opts...), resp),
		Votes:     httpadapter.NewVoteHandler(services.NewVoteService(voteStore, opts...), resp),
		Admin: httpadapter.NewAdminHandler(electionService,
			services.NewAnonymizationService(voteStore, append(opts, services.WithRateLimiter(postgres.NewAttemptLimiter(db, postgres.ScopeAnonymize, anonymizeAttempts, time.Hour, nil)))...),
			[]byte(salt), resp),
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &TestApp{DB: db, Server: server, Client: server.Client()}
}

func createToken(t *testing.T, subject string, roles ...string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}
