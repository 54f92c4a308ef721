package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notification-relay/internal/domain"
)

// DefaultAckTimeout bounds the wait for batch acknowledgments. The legacy
// service waited forever and leaked sessions on a broker that went quiet.
const DefaultAckTimeout = 30 * time.Second

// Publisher sends notification batches to the broker and aggregates the
// per-message acknowledgments into a single all-or-nothing outcome.
type Publisher struct {
	factory    SessionFactory
	ackTimeout time.Duration
	logger     *zap.Logger
}

func NewPublisher(factory SessionFactory, ackTimeout time.Duration, logger *zap.Logger) *Publisher {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	return &Publisher{factory: factory, ackTimeout: ackTimeout, logger: logger}
}

// Publish sends the whole batch over one session and resolves exactly once:
// success when every message's correlation key has been acknowledged,
// failure on connect error, negative ack, or ack timeout. An empty batch
// resolves trivially without touching the broker.
func (p *Publisher) Publish(ctx context.Context, batch []domain.QueueMessage) domain.PublishOutcome {
	if len(batch) == 0 {
		return domain.PublishOutcome{Status: domain.PublishSuccess, AckedKeys: []string{}}
	}

	session, err := p.factory.Connect(ctx)
	if err != nil {
		p.logger.Error("broker connection failed", zap.Error(err))
		return domain.PublishOutcome{
			Status:    domain.PublishFailure,
			AckedKeys: []string{},
			Message:   ErrBrokerConnect.Error(),
		}
	}
	defer session.Close()

	// pending maps each in-flight correlation key to its settlement state.
	pending := make(map[string]bool, len(batch))
	for i := range batch {
		batch[i].CorrelationKey = fmt.Sprintf("ck-%s", uuid.NewString())
		pending[batch[i].CorrelationKey] = false
		if err := session.Send(batch[i]); err != nil {
			p.logger.Error("broker send failed",
				zap.String("queue", batch[i].QueueName),
				zap.String("correlation_key", batch[i].CorrelationKey),
				zap.Error(err),
			)
			return domain.PublishOutcome{
				Status:    domain.PublishFailure,
				AckedKeys: []string{},
				Message:   fmt.Sprintf("send failed: %v", err),
			}
		}
		p.logger.Debug("message sent",
			zap.String("queue", batch[i].QueueName),
			zap.String("correlation_key", batch[i].CorrelationKey),
		)
	}

	acked := make([]string, 0, len(batch))
	timeout := time.NewTimer(p.ackTimeout)
	defer timeout.Stop()

	// Acks arrive in arbitrary order; completion is membership of the full
	// key set, not a counter.
	for len(acked) < len(batch) {
		select {
		case ev, ok := <-session.Acks():
			if !ok {
				return p.failure(acked, "broker session closed before all acknowledgments")
			}
			if ev.Err != nil {
				p.logger.Error("message rejected by broker",
					zap.String("correlation_key", ev.CorrelationKey),
					zap.Error(ev.Err),
				)
				return p.failure(acked, fmt.Sprintf("message rejected: %v", ev.Err))
			}
			settled, known := pending[ev.CorrelationKey]
			if !known || settled {
				p.logger.Warn("unexpected acknowledgment", zap.String("correlation_key", ev.CorrelationKey))
				continue
			}
			pending[ev.CorrelationKey] = true
			acked = append(acked, ev.CorrelationKey)

		case <-timeout.C:
			p.logger.Error("acknowledgment wait timed out",
				zap.Int("acked", len(acked)),
				zap.Int("batch", len(batch)),
			)
			return p.failure(acked, "acknowledgment timeout")

		case <-ctx.Done():
			return p.failure(acked, ctx.Err().Error())
		}
	}

	p.logger.Info("batch fully acknowledged", zap.Int("messages", len(batch)))
	return domain.PublishOutcome{Status: domain.PublishSuccess, AckedKeys: acked}
}

func (p *Publisher) failure(acked []string, msg string) domain.PublishOutcome {
	return domain.PublishOutcome{Status: domain.PublishFailure, AckedKeys: acked, Message: msg}
}
