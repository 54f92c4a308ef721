package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-relay/internal/domain"
)

func TestDLQName(t *testing.T) {
	assert.Equal(t, "#dlq#.notifications.backend", domain.DLQName("notifications.backend"))
	assert.Equal(t, "#dlq#.q", domain.DLQName("q"))
}

func TestNewQueueMessage_ChannelTag(t *testing.T) {
	msg, err := domain.NewQueueMessage("q", domain.Notification{EmailDetails: &domain.EmailDetails{
		Sender:    "a@b.co",
		Recipient: []string{"x@y.co", "z@y.co"},
		Subject:   "s",
		Message:   "<b>hi</b>",
	}})
	require.NoError(t, err)

	env, err := domain.DecodeEnvelope(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, env.Type)
	assert.Equal(t, "a@b.co", env.Sender)
	assert.Equal(t, []string{"x@y.co", "z@y.co"}, env.Recipient)
	assert.Equal(t, "<b>hi</b>", env.Message)
}

func TestNewQueueMessage_NoVariant(t *testing.T) {
	_, err := domain.NewQueueMessage("q", domain.Notification{})
	assert.Error(t, err)
}
