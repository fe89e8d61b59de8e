package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omarioz/BiyoKaab/internal/config"
	httpapi "github.com/omarioz/BiyoKaab/internal/http"
	"github.com/omarioz/BiyoKaab/internal/repository"
	"github.com/omarioz/BiyoKaab/internal/service"
	"github.com/omarioz/BiyoKaab/internal/store"
	"github.com/omarioz/BiyoKaab/pkg/database"
	"github.com/omarioz/BiyoKaab/pkg/logger"
	redisclient "github.com/omarioz/BiyoKaab/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "biyokaab-data")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient := redisclient.NewRedisClient(&cfg.Redis)
	kv := store.NewRedisKV(redisClient)

	sensorsRepo := repository.NewSensorsRepository(db, zapLogger)
	profilesRepo := repository.NewProfilesRepository(db, zapLogger)
	systemsRepo := repository.NewSystemsRepository(db, zapLogger)
	demandRepo := repository.NewDemandRepository(db, zapLogger)
	climateRepo := repository.NewClimateRepository(db, zapLogger)
	plansRepo := repository.NewPlansRepository(db, zapLogger)

	ingestSvc := service.NewIngestService(sensorsRepo, zapLogger)
	statusSvc := service.NewStatusService(sensorsRepo, cfg, zapLogger)
	dashboardSvc := service.NewDashboardService(
		profilesRepo, systemsRepo, sensorsRepo, demandRepo, climateRepo, kv, cfg, zapLogger)

	var generator service.PlanGenerator
	if cfg.OpenAI.APIKey != "" {
		generator, err = service.NewOpenAIPlanner(cfg.OpenAI)
		if err != nil {
			zapLogger.Fatal("Failed to initialize plan generator", zap.Error(err))
		}
	} else {
		zapLogger.Warn("OPENAI_API_KEY not configured, plan generation disabled")
		generator = service.NewDisabledGenerator()
	}
	plannerSvc := service.NewPlannerService(
		profilesRepo, systemsRepo, sensorsRepo, demandRepo, climateRepo, plansRepo,
		generator, cfg.Planner.Timeout, zapLogger)

	router := httpapi.NewRouter(zapLogger)
	router.RegisterWaterRoutes(
		httpapi.NewIngestHandler(ingestSvc, zapLogger),
		httpapi.NewDeviceHandler(statusSvc, zapLogger),
		httpapi.NewDashboardHandler(dashboardSvc, zapLogger),
		httpapi.NewPlanHandler(plannerSvc, cfg.Planner.DefaultHorizonDays, zapLogger),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, zapLogger)

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	if cfg.Climate.BaseURL != "" {
		locationsRepo := repository.NewLocationsRepository(db, zapLogger)
		fetcher := service.NewClimateFetcher(cfg.Climate, climateRepo, zapLogger)
		go fetcher.Run(ctx, locationsRepo, cfg.ClimateRefreshInterval)
	} else {
		zapLogger.Warn("SWALIM_BASE_URL not configured, climate refresh disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLogger.Error("HTTP server exited", zap.Error(err))
	}

	cancelBackground()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = db.Close()

	zapLogger.Info("Service stopped")
}
