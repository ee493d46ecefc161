package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

var _ domain.PublisherPort = (*DefaultKafkaPublisher)(nil)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
	log    logrus.FieldLogger
}

func NewDefaultKafkaPublisher(brokers []string, log logrus.FieldLogger) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		log: log,
	}
}

func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return k.PublishContext(ctx, topic, msgs...)
}

func (k *DefaultKafkaPublisher) PublishContext(ctx context.Context, topic string, msgs ...domain.Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}
	return k.writer.WriteMessages(ctx, km...)
}

// EncodeLedgerEvents turns events into keyed messages. Events that cannot be
// encoded are skipped and logged.
func (k *DefaultKafkaPublisher) EncodeLedgerEvents(events []LedgerEvent) []domain.Message {
	messages := make([]domain.Message, 0, len(events))
	for _, event := range events {
		v, err := json.Marshal(event)
		if err != nil {
			k.log.WithError(err).WithField("event_id", event.EventID).Warn("failed to marshal ledger event")
			continue
		}
		messages = append(messages, domain.Message{Key: []byte(event.PartitionKey()), Value: v})
	}
	return messages
}

// PublishLedgerEvents publishes events in batches, retrying each batch with a
// linear backoff. It fails only if every batch failed.
func (k *DefaultKafkaPublisher) PublishLedgerEvents(topic string, events []LedgerEvent, batchSize int, maxRetries int) error {
	if len(events) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var allErrors []error
	successfulCount := 0

	for i := 0; i < len(events); i += batchSize {
		end := i + batchSize
		if end > len(events) {
			end = len(events)
		}

		messages := k.EncodeLedgerEvents(events[i:end])
		if len(messages) == 0 {
			continue
		}

		var err error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			err = k.Publish(topic, messages...)
			if err == nil {
				successfulCount += len(messages)
				break
			}

			k.log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "topic": topic}).Warn("batch publish failed")
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
			}
		}

		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("batch %d-%d failed after %d attempts: %w", i, end, maxRetries, err))
		}
	}

	k.log.WithFields(logrus.Fields{"published": successfulCount, "total": len(events), "topic": topic}).Debug("ledger events published")

	if successfulCount == 0 && len(allErrors) > 0 {
		return fmt.Errorf("all batches failed: %v", allErrors)
	}
	return nil
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
