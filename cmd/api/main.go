package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sales-crm/internal/api/http"
	"github.com/spec-kit/sales-crm/internal/api/http/handlers"
	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/config"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/observability"
	"github.com/spec-kit/sales-crm/internal/persistence"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/service"
	"github.com/spec-kit/sales-crm/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo repository.UserRepository
		crmRepo  repository.CRMRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.Pool)
		crmRepo = repository.NewCRMRepository(pg.Pool)
	} else {
		seed, err := repository.LoadSeed(cfg.Seed.Path, cfg.Auth.BcryptCost)
		if err != nil {
			logger.Fatal("failed to load seed data", zap.Error(err))
		}
		logger.Info("loaded seed data",
			zap.String("path", cfg.Seed.Path),
			zap.Int("users", len(seed.Users)),
			zap.Int("anchors", len(seed.Anchors)),
			zap.Int("spokes", len(seed.Spokes)))
		userRepo = repository.NewSeedUserRepository(seed)
		crmRepo = repository.NewMemoryCRMRepository(seed)
	}

	prefRepo := repository.NewMemoryPreferenceRepository()
	if redis.Enabled() {
		prefRepo = repository.NewRedisPreferenceRepository(redis.Client, cfg.Preferences.TTL())
	}

	directory, err := service.LoadDirectory(ctx, userRepo)
	if err != nil {
		logger.Fatal("invalid reporting hierarchy", zap.Error(err))
	}
	logger.Info("directory loaded", zap.Int("users", directory.Len()))

	provider, err := flows.NewGenAIProvider(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to init generative provider", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, directory)
	prefService := service.NewPreferenceService(prefRepo, directory, cfg.Preferences.DefaultLanguage)
	flowService := service.NewFlowService(service.FlowDependencies{
		Provider:   provider,
		Repo:       crmRepo,
		Directory:  directory,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		BatchLimit: cfg.AI.BatchMaxWorker,
	})
	crmService := service.NewCRMService(service.CRMDependencies{
		Repo:       crmRepo,
		Directory:  directory,
		Geocoder:   flowService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	worker.StartActivityWorker(service.NewActivityRecorder(dispatcher, crmRepo, logger))

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), directory, prefService)

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService, prefService),
		Directory:      handlers.NewDirectoryHandler(directory),
		CRM:            handlers.NewCRMHandler(crmService),
		Flows:          handlers.NewFlowsHandler(flowService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
