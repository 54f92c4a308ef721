package kafka

import (
	"context"
	"regexp"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-relay/internal/domain"
)

var legalTopicRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func TestDLQTopic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"backend queue", domain.DLQName("notifications.backend"), "dlq.notifications.backend"},
		{"apim queue", domain.DLQName("notifications.apim"), "dlq.notifications.apim"},
		{"already a plain topic", "notifications.backend", "notifications.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dlqTopic(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, legalTopicRe, got)
		})
	}
}

type captureSyncProducer struct {
	sarama.SyncProducer
	topics []string
}

func (p *captureSyncProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	p.topics = append(p.topics, msg.Topic)
	return 0, 0, nil
}

func TestForward_ProducesToLegalTopic(t *testing.T) {
	producer := &captureSyncProducer{}
	f := &DLQForwarder{producer: producer}

	err := f.Forward(context.Background(), domain.DLQName("notifications.backend"), []byte("payload"))
	require.NoError(t, err)

	require.Len(t, producer.topics, 1)
	assert.Equal(t, "dlq.notifications.backend", producer.topics[0])
	assert.Regexp(t, legalTopicRe, producer.topics[0])
}
