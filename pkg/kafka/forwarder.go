package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"notification-relay/internal/domain"
)

// Kafka topic names are restricted to [a-zA-Z0-9._-], so the legacy
// "#dlq#." queue prefix cannot appear on the wire. The binding maps it to a
// plain "dlq." topic prefix; everything after the prefix is already legal
// because source queues are themselves Kafka topics.
const dlqTopicPrefix = "dlq."

func dlqTopic(dlqName string) string {
	if rest, ok := strings.CutPrefix(dlqName, domain.DLQPrefix); ok {
		return dlqTopicPrefix + rest
	}
	return dlqName
}

// DLQForwarder publishes failed messages to their dead-letter queue over a
// process-lifetime sync producer.
type DLQForwarder struct {
	producer sarama.SyncProducer
}

func NewDLQForwarder(brokers []string) (*DLQForwarder, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}
	return &DLQForwarder{producer: producer}, nil
}

// Forward publishes the payload unmodified to the topic backing dlqName.
// The caller treats a failure here as log-and-continue; it must never block
// an acknowledgment.
func (f *DLQForwarder) Forward(ctx context.Context, dlqName string, payload []byte) error {
	_, _, err := f.producer.SendMessage(&sarama.ProducerMessage{
		Topic: dlqTopic(dlqName),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send DLQ message: %w", err)
	}
	return nil
}

func (f *DLQForwarder) Close() error {
	return f.producer.Close()
}
