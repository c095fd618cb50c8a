package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localpulse/pulse/app/cfg"
	"github.com/localpulse/pulse/app/database"
	"github.com/localpulse/pulse/app/pipeline"
	"github.com/localpulse/pulse/app/tasks"
	"github.com/localpulse/pulse/app/taxonomy"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Local Pulse processor", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepo(db)
	businessRepo := database.NewBusinessRepo(db)
	taxonomyRepo := database.NewTaxonomyRepo(db)
	txRunner := database.NewTxRunner(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeder := taxonomy.NewSeeder(appCfg.SeedsDir, taxonomyRepo)
	if err := seeder.Run(ctx, taxonomyRepo); err != nil {
		slog.Error("Failed to seed taxonomy", "error", err)
		os.Exit(1)
	}

	taxonomyCache := taxonomy.NewCache(taxonomyRepo,
		time.Duration(appCfg.TaxonomyRefreshInterval)*time.Second)
	if err := taxonomyCache.Run(ctx); err != nil {
		slog.Error("Failed to load taxonomy", "error", err)
		os.Exit(1)
	}
	defer taxonomyCache.Stop()

	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", appCfg.Timezone, "error", err)
		loc = time.Local
	}

	var crossChecker pipeline.CrossChecker
	if appCfg.LLMEnabled {
		crossChecker = pipeline.NewLLMClient(appCfg.LLMEndpoint, appCfg.LLMModel,
			time.Duration(appCfg.LLMTimeout)*time.Second)
		slog.Info("LLM cross-check enabled", "endpoint", appCfg.LLMEndpoint, "model", appCfg.LLMModel)
	}

	orchestrator := pipeline.NewOrchestrator(
		articleRepo,
		businessRepo,
		txRunner,
		taxonomyCache,
		pipeline.NewFeatureExtractor(loc),
		pipeline.NewPreFilter(appCfg.HomeCountry),
		pipeline.NewGeographicMatcher(appCfg.HomeCountry),
		crossChecker,
		appCfg.ReferenceCity,
	)

	slog.Info("Starting background scheduler",
		"workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(articleRepo, orchestrator)
	scheduler.Start()
	defer scheduler.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Local Pulse processor started")

	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig.String())
}
