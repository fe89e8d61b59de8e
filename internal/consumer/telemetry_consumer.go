package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"
	"github.com/omarioz/BiyoKaab/pkg/mqtt"

	"go.uber.org/zap"
)

// ingestTimeout bounds the database work for one message.
const ingestTimeout = 10 * time.Second

// TelemetryConsumer subscribes to the device telemetry topic and feeds every
// message through the ingest service. Bad messages are logged and dropped;
// the subscription never stops over a single payload.
type TelemetryConsumer struct {
	client *mqtt.Client
	ingest *service.IngestService
	topic  string
	qos    byte
	logger *zap.Logger
}

// NewTelemetryConsumer creates a consumer for topic, typically
// biyokaab/+/telemetry.
func NewTelemetryConsumer(client *mqtt.Client, ingest *service.IngestService, topic string, qos byte, logger *zap.Logger) *TelemetryConsumer {
	return &TelemetryConsumer{
		client: client,
		ingest: ingest,
		topic:  topic,
		qos:    qos,
		logger: logger,
	}
}

// Start subscribes and returns; delivery happens on paho's callback
// goroutines until Stop.
func (c *TelemetryConsumer) Start() error {
	if err := c.client.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return err
	}
	c.logger.Info("Telemetry consumer started",
		zap.String("topic", c.topic),
		zap.Uint8("qos", c.qos),
	)
	return nil
}

// Stop unsubscribes from the telemetry topic.
func (c *TelemetryConsumer) Stop() {
	if err := c.client.Unsubscribe(c.topic); err != nil {
		c.logger.Warn("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("Telemetry consumer stopped")
}

func (c *TelemetryConsumer) handleMessage(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	_, err := c.ingest.Ingest(ctx, "mqtt:"+topic, payload)
	if err == nil {
		return nil
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		// Malformed telemetry is expected from field devices. Drop it
		// without treating the handler as failed.
		c.logger.Warn("Dropping invalid telemetry",
			zap.String("topic", topic),
			zap.String("reason", verr.Error()),
		)
		return nil
	}

	c.logger.Error("Failed to ingest telemetry",
		zap.String("topic", topic),
		zap.Error(err),
	)
	return err
}
