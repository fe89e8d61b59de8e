package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omarioz/BiyoKaab/internal/config"
	"github.com/omarioz/BiyoKaab/internal/consumer"
	"github.com/omarioz/BiyoKaab/internal/repository"
	"github.com/omarioz/BiyoKaab/internal/service"
	"github.com/omarioz/BiyoKaab/pkg/database"
	"github.com/omarioz/BiyoKaab/pkg/logger"
	"github.com/omarioz/BiyoKaab/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "biyokaab-ingest")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	mqttClient, err := mqtt.NewClient(&cfg.MQTT, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}

	sensorsRepo := repository.NewSensorsRepository(db, zapLogger)
	ingestSvc := service.NewIngestService(sensorsRepo, zapLogger)

	telemetry := consumer.NewTelemetryConsumer(
		mqttClient, ingestSvc, cfg.MQTT.Topic, cfg.MQTT.QoS, zapLogger)
	if err := telemetry.Start(); err != nil {
		zapLogger.Fatal("Failed to start telemetry consumer", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	telemetry.Stop()
	mqttClient.Disconnect()
	_ = db.Close()

	zapLogger.Info("Service stopped")
}
