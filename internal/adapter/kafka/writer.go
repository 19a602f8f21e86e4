package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/gfs-plot/internal/config"
	"github.com/couchcryptid/gfs-plot/internal/domain"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 3
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher announces written images on a Kafka topic.
// It implements pipeline.Notifier.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewPublisher creates a Kafka producer for the configured image topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger, backoff: initialBackoff}
}

// Publish serializes the events and writes them in a single WriteMessages
// call, retrying with exponential backoff up to maxAttempts times.
func (p *Publisher) Publish(ctx context.Context, events []domain.ImageEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = p.writer.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("publish image events failed, retrying",
			"error", err, "attempt", attempt, "backoff", backoff, "events", len(msgs))
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %d image events: %w", len(msgs), err)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an ImageEvent into a Kafka message keyed by
// the image path.
func serializeToMessage(event domain.ImageEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize image event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Path),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "product", Value: []byte(event.Product)},
			{Key: "init_time", Value: []byte(event.InitTime)},
			{Key: "forecast_hour", Value: []byte(strconv.Itoa(event.ForecastHour))},
		},
	}, nil
}
