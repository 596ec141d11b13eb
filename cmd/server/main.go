package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vncsmyrnk/elections/internal/adapters/audit"
	"github.com/vncsmyrnk/elections/internal/adapters/handler/http"
	"github.com/vncsmyrnk/elections/internal/adapters/metrics"
	"github.com/vncsmyrnk/elections/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/elections/internal/config"
	"github.com/vncsmyrnk/elections/internal/core/services"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	configFile := flag.String("config", os.Getenv("ELECTIONS_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Info(fmt.Sprintf(format, v...), "component", "maxprocs")
	})); err != nil {
		logger.Error("failed to set GOMAXPROCS", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "event", "elections_config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "event", "elections_server_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithAudit(audit.NewSlogSink(logger)),
		services.WithMetrics(metrics.NewVoteMetrics(registry)),
	}

	lockTimeout := cfg.Database.LockTimeout
	electionRepo := postgres.NewElectionRepository(db, lockTimeout, logger)
	voteStore := postgres.NewVoteStore(db, lockTimeout, logger)
	resultRepo := postgres.NewResultRepository(db, logger)

	electionService := services.NewElectionService(electionRepo, opts...)
	voteService := services.NewVoteService(voteStore, opts...)
	resultService := services.NewResultService(electionRepo, resultRepo, opts...)
	anonymizationService := services.NewAnonymizationService(voteStore, append(opts,
		services.WithRateLimiter(postgres.NewAttemptLimiter(db, postgres.ScopeAnonymize,
			cfg.Anonymize.MaxAttempts, cfg.Anonymize.Window, logger)),
	)...)

	resp := http.NewResponder(logger, cfg.Debug)
	handler := http.NewHandler(http.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Gatherer:       registry,
		HealthCheck:    db.PingContext,
	}, http.Handlers{
		Auth:      http.NewAuthenticator([]byte(cfg.JWTSecret), resp),
		Elections: http.NewElectionHandler(electionService, resultService, resp),
		Votes:     http.NewVoteHandler(voteService, resp),
		Admin:     http.NewAdminHandler(electionService, anonymizationService, []byte(cfg.AnonymizationSalt), resp),
	})

	server := &stdhttp.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "event", "elections_server_started", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("gracefully shutting down", "event", "elections_server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
