package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

// NewPublisher returns a Kafka-backed publisher, or a NopPublisher when no
// broker is configured.
func NewPublisher(broker, topic string) Publisher {
	if broker == "" {
		logger.L().Info("kafka broker not configured, lifecycle events disabled")
		return NopPublisher{}
	}
	return &KafkaPublisher{w: newWriter(broker, topic)}
}

func newWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   onCompletion,
	}
}

func onCompletion(msgs []kafka.Message, err error) {
	if err != nil {
		metrics.EventsFailed.Add(uint64(len(msgs)))
		logger.L().Warn("failed to deliver lifecycle events",
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
		return
	}
	metrics.EventsPublished.Add(uint64(len(msgs)))
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Keyed by listing so one listing's events stay on one partition.
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.ListingID, 10)),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		metrics.EventsFailed.Inc()
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
