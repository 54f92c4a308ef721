package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"notification-relay/internal/broker"
)

// QueueConsumer runs one consumer-group subscription per configured queue
// against a shared broker client and feeds every received message to the
// dispatch core. MarkMessage is the acknowledge operation; the core invokes
// it exactly once per message.
type QueueConsumer struct {
	client     sarama.ConsumerGroup
	queues     []string
	dispatcher *broker.Consumer
	logger     *zap.Logger
}

func NewQueueConsumer(brokers []string, groupID string, queues []string, dispatcher *broker.Consumer, logger *zap.Logger) (*QueueConsumer, error) {
	if len(queues) == 0 {
		return nil, fmt.Errorf("at least one queue name is required")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &QueueConsumer{
		client:     client,
		queues:     queues,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Start blocks until ctx is cancelled, rejoining the group after rebalances.
func (c *QueueConsumer) Start(ctx context.Context) error {
	handler := &groupHandler{dispatcher: c.dispatcher, logger: c.logger}

	c.logger.Info("consuming from queues", zap.Strings("queues", c.queues))
	for {
		if err := c.client.Consume(ctx, c.queues, handler); err != nil {
			c.logger.Error("consumer error", zap.Error(err))
		}

		// if ctx is cancelled, exit cleanly
		if ctx.Err() != nil {
			c.logger.Info("context cancelled, shutting down consumer")
			return nil
		}
	}
}

func (c *QueueConsumer) Close() error {
	return c.client.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	dispatcher *broker.Consumer
	logger     *zap.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("consumer group session started")
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("consumer group session ended")
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		msg := message
		h.dispatcher.HandleMessage(session.Context(), msg.Topic, msg.Value, func() {
			session.MarkMessage(msg, "")
		})
	}
	return nil
}
