// Package kafka publishes order events to a Kafka topic keyed by order number.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher serializes events as JSON. Messages share a key per order so a
// hash balancer keeps each order's events on one partition, in order.
type Publisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewWriter builds the kafka-go writer used in production.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewPublisher(writer MessageWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{writer: writer, logger: logger}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafkago.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", event.Type, err)
		}
		messages = append(messages, kafkago.Message{
			Key:   []byte(event.OrderNumber),
			Value: payload,
			Time:  event.OccurredAt,
			Headers: []kafkago.Header{
				{Key: "event-type", Value: []byte(event.Type)},
				{Key: "event-id", Value: []byte(event.ID)},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "failed to publish order events",
			slog.Int("count", len(messages)),
			slog.String("order.number", events[0].OrderNumber),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
