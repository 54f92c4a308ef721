package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notification-relay/internal/domain"
)

// Sender attempts delivery of one decoded notification over its channel
// (SMTP, SMS gateway). Failures come back as data, never as panics.
type Sender interface {
	AttemptDelivery(ctx context.Context, env domain.Envelope) domain.DeliveryOutcome
}

// DeliveryRecord is one row of the delivery audit trail.
type DeliveryRecord struct {
	Queue        string
	Channel      string
	Recipient    string
	Success      bool
	ErrorDetail  string
	DLQForwarded bool
}

// DeliveryRecorder persists DeliveryRecords. Recording is best-effort.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, rec DeliveryRecord) error
}

// Consumer dispatches messages received from the broker's queues to the
// matching delivery channel, routing failures to the queue's dead-letter
// queue. Transport subscriptions live in pkg/kafka; this type owns the
// per-message state machine:
//
//	Received -> Delivering -> Acked (success)
//	Received -> Delivering -> DLQ-Forwarded -> Acked (failure)
//
// There is no path back to Received; the ack runs exactly once per message
// on every exit path, including panics.
type Consumer struct {
	senders   map[string]Sender
	forwarder Forwarder
	recorder  DeliveryRecorder // optional
	logger    *zap.Logger
}

func NewConsumer(senders map[string]Sender, forwarder Forwarder, recorder DeliveryRecorder, logger *zap.Logger) *Consumer {
	return &Consumer{senders: senders, forwarder: forwarder, recorder: recorder, logger: logger}
}

// HandleMessage processes one received message and acknowledges it exactly
// once. ack must remove the message from its source queue; it is invoked via
// defer so no failure below, the DLQ forward included, can skip it.
func (c *Consumer) HandleMessage(ctx context.Context, queueName string, body []byte, ack func()) {
	forwarded := false
	defer ack()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during dispatch, routing to DLQ",
				zap.String("queue", queueName),
				zap.Any("panic", r),
			)
			if !forwarded {
				c.forwardToDLQ(ctx, queueName, body)
			}
		}
	}()

	env, err := domain.DecodeEnvelope(body)
	if err != nil {
		// Same treatment as a delivery failure: the broker copy goes to the
		// DLQ unmodified for later inspection.
		c.logger.Error("undecodable message", zap.String("queue", queueName), zap.Error(err))
		forwarded = true
		c.forwardToDLQ(ctx, queueName, body)
		c.record(ctx, DeliveryRecord{
			Queue:        queueName,
			ErrorDetail:  err.Error(),
			DLQForwarded: true,
		})
		return
	}

	outcome := c.dispatch(ctx, env)
	rec := DeliveryRecord{
		Queue:       queueName,
		Channel:     env.Type,
		Recipient:   recipientOf(env),
		Success:     outcome.Success,
		ErrorDetail: outcome.ErrorDetail,
	}

	if outcome.Success {
		c.logger.Info("delivered",
			zap.String("queue", queueName),
			zap.String("channel", env.Type),
		)
		c.record(ctx, rec)
		return
	}

	c.logger.Error("delivery failed, routing to DLQ",
		zap.String("queue", queueName),
		zap.String("channel", env.Type),
		zap.String("error", outcome.ErrorDetail),
	)
	forwarded = true
	c.forwardToDLQ(ctx, queueName, body)
	rec.DLQForwarded = true
	c.record(ctx, rec)
}

func (c *Consumer) dispatch(ctx context.Context, env domain.Envelope) domain.DeliveryOutcome {
	sender, ok := c.senders[env.Type]
	if !ok {
		return domain.DeliveryOutcome{
			ErrorDetail: fmt.Sprintf("unrecognized notification type %q", env.Type),
		}
	}
	return sender.AttemptDelivery(ctx, env)
}

// forwardToDLQ is fire-and-continue: a forward failure is logged and
// swallowed so the caller's acknowledge still runs.
func (c *Consumer) forwardToDLQ(ctx context.Context, queueName string, body []byte) {
	dlq := domain.DLQName(queueName)
	if err := c.forwarder.Forward(ctx, dlq, body); err != nil {
		c.logger.Error("DLQ forward failed", zap.String("dlq", dlq), zap.Error(err))
		return
	}
	c.logger.Info("message forwarded to DLQ", zap.String("dlq", dlq))
}

func (c *Consumer) record(ctx context.Context, rec DeliveryRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordDelivery(ctx, rec); err != nil {
		c.logger.Warn("delivery audit write failed", zap.Error(err))
	}
}

func recipientOf(env domain.Envelope) string {
	switch env.Type {
	case domain.ChannelSMS:
		return env.MobileNumber
	case domain.ChannelEmail:
		if len(env.Recipient) > 0 {
			return env.Recipient[0]
		}
	}
	return ""
}
