package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/elections/internal/adapters/audit"
	"github.com/vncsmyrnk/elections/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/elections/internal/config"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/services"
)

const programName = "electionsctl"

var globalFlags = struct {
	configFile string
	debug      bool
	timeout    time.Duration
}{}

type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(globalFlags.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalFlags.debug {
		cfg.Debug = true
	}
	logger := cfg.NewLogger(os.Stderr).With("component", programName)
	slog.SetDefault(logger)

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func anonymizeCommand() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "anonymize <election-id>",
		Short: "Replace voter identities of a closed election with keyed hashes (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			electionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid election id: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), globalFlags.timeout)
			defer cancel()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.db.Close()

			if e.cfg.AnonymizationSalt == "" {
				return errors.New("ANONYMIZATION_SALT is required")
			}
			if err := e.cfg.Anonymize.Validate(); err != nil {
				return err
			}

			store := postgres.NewVoteStore(e.db, e.cfg.Database.LockTimeout, e.logger)
			svc := services.NewAnonymizationService(store,
				services.WithLogger(e.logger),
				services.WithAudit(audit.NewSlogSink(e.logger)),
				services.WithRateLimiter(postgres.NewAttemptLimiter(e.db, postgres.ScopeAnonymize,
					e.cfg.Anonymize.MaxAttempts, e.cfg.Anonymize.Window, e.logger)),
			)
			n, err := svc.AnonymizeClosedElection(ctx, electionID, []byte(e.cfg.AnonymizationSalt), actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "anonymized %d ballot rows\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", currentUser(), "operator name recorded in the audit log")
	return cmd
}

func resultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "results <election-id>",
		Short: "Print aggregated results of an election as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			electionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid election id: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), globalFlags.timeout)
			defer cancel()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.db.Close()

			svc := services.NewResultService(
				postgres.NewElectionRepository(e.db, e.cfg.Database.LockTimeout, e.logger),
				postgres.NewResultRepository(e.db, e.logger),
				services.WithLogger(e.logger),
			)
			// Operators read results with admin rights.
			results, err := svc.GetResults(ctx, electionID, domain.Roles{domain.RoleAdmin})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return programName
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operator tooling for the elections service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", os.Getenv("ELECTIONS_CONFIG"), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.timeout, "timeout", 5*time.Minute, "overall command timeout")

	rootCmd.AddCommand(anonymizeCommand(), resultsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
