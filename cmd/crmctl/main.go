// Command crmctl is the operator CLI for the sales CRM: it validates the
// reporting hierarchy, shows who can see whom, and runs AI flows ad hoc.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/config"
	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/persistence"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/service"
)

var (
	seedPath string
	verbose  bool

	// newProvider is swapped in tests.
	newProvider = func(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (flows.Provider, error) {
		return flows.NewGenAIProvider(ctx, cfg, logger)
	}
)

var rootCmd = &cobra.Command{
	Use:           "crmctl",
	Short:         "Operate the sales CRM from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "seed file to read users from (defaults to CRM_SEED_PATH; ignored when POSTGRES_DSN is set)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	directoryCmd.AddCommand(directoryCheckCmd)
	visibleCmd.Flags().StringVar(&visibleUser, "user", "", "user ID to resolve")
	_ = visibleCmd.MarkFlagRequired("user")
	flowCmd.Flags().StringVar(&flowInput, "input", "", "input JSON, or @path to read it from a file")

	rootCmd.AddCommand(directoryCmd, visibleCmd, flowCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is the subset of the service wiring the CLI needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	close  func()
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if seedPath != "" {
		cfg.Seed.Path = seedPath
	}

	logger := zap.NewNop()
	if verbose {
		cfg.Logger.Level = "debug"
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	return &env{cfg: cfg, logger: logger, close: func() { _ = logger.Sync() }}, nil
}

// loadDirectory reads users from Postgres when configured, else from the seed file.
func (e *env) loadDirectory(ctx context.Context) (*service.DirectoryService, error) {
	pg, err := persistence.NewPostgres(ctx, e.cfg.Postgres, e.logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var users repository.UserRepository
	if pg.Enabled() {
		users = repository.NewUserRepository(pg.Pool)
	} else {
		// Password hashes are irrelevant here; use the cheapest cost.
		seed, err := repository.LoadSeed(e.cfg.Seed.Path, 4)
		if err != nil {
			return nil, err
		}
		users = repository.NewSeedUserRepository(seed)
	}
	return service.LoadDirectory(ctx, users)
}
