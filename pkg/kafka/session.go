package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"notification-relay/internal/broker"
	"notification-relay/internal/domain"
)

// Record headers carrying the durability hints the legacy broker expressed
// as message properties. TTL expiry is enforced by broker retention, not by
// this client.
const (
	HeaderTTLMillis   = "ttl-ms"
	HeaderDLQEligible = "dlq-eligible"
)

// SessionFactory opens one async-producer session per publish batch.
type SessionFactory struct {
	brokers []string
}

func NewSessionFactory(brokers []string) *SessionFactory {
	return &SessionFactory{brokers: brokers}
}

func (f *SessionFactory) Connect(ctx context.Context) (broker.Session, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all replicas
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewAsyncProducer(f.brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	s := &session{
		producer: producer,
		acks:     make(chan broker.AckEvent),
		done:     make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

// session adapts sarama's async producer to the broker.Session contract.
// The correlation key rides in the message Metadata and comes back on the
// Successes/Errors channels, which pump translates into AckEvents.
type session struct {
	producer sarama.AsyncProducer
	acks     chan broker.AckEvent
	done     chan struct{}
}

func (s *session) Send(msg domain.QueueMessage) error {
	s.producer.Input() <- &sarama.ProducerMessage{
		Topic:    msg.QueueName,
		Key:      sarama.StringEncoder(msg.CorrelationKey),
		Value:    sarama.ByteEncoder(msg.Body),
		Metadata: msg.CorrelationKey,
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderTTLMillis), Value: []byte(strconv.FormatInt(broker.MessageTTL.Milliseconds(), 10))},
			{Key: []byte(HeaderDLQEligible), Value: []byte("true")},
		},
		Timestamp: time.Now(),
	}
	return nil
}

func (s *session) Acks() <-chan broker.AckEvent {
	return s.acks
}

func (s *session) pump() {
	defer close(s.acks)
	successes := s.producer.Successes()
	errors := s.producer.Errors()
	for successes != nil || errors != nil {
		select {
		case msg, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			s.emit(broker.AckEvent{CorrelationKey: metadataKey(msg)})
		case perr, ok := <-errors:
			if !ok {
				errors = nil
				continue
			}
			s.emit(broker.AckEvent{CorrelationKey: metadataKey(perr.Msg), Err: perr.Err})
		}
	}
}

func (s *session) emit(ev broker.AckEvent) {
	select {
	case s.acks <- ev:
	case <-s.done:
	}
}

func (s *session) Close() error {
	close(s.done)
	return s.producer.Close()
}

func metadataKey(msg *sarama.ProducerMessage) string {
	if msg == nil {
		return ""
	}
	key, _ := msg.Metadata.(string)
	return key
}
