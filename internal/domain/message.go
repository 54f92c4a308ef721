package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DLQPrefix is prepended to a source queue name to derive its dead-letter
// queue. The transform is deterministic and not configurable per message.
const DLQPrefix = "#dlq#."

// DLQName returns the dead-letter queue name for a source queue.
func DLQName(queueName string) string {
	return DLQPrefix + queueName
}

// Envelope is the wire form of a queued notification: the channel
// discriminator plus the flattened fields of the matching variant.
type Envelope struct {
	Type string `json:"type"`

	// SMS fields.
	MobileNumber    string `json:"mobileNumber,omitempty"`
	MessageLanguage string `json:"messageLanguage,omitempty"`
	SenderCode      string `json:"senderCode,omitempty"`

	// Email fields.
	Sender    string   `json:"sender,omitempty"`
	Recipient []string `json:"recipient,omitempty"`
	Subject   string   `json:"subject,omitempty"`

	// Shared by both channels.
	Message string `json:"message"`
}

// QueueMessage is one broker-bound message. It is owned by the publisher
// until sent; after that the broker copy is the only one that matters.
type QueueMessage struct {
	QueueName      string
	Body           []byte // base64(UTF-8 JSON envelope)
	CorrelationKey string
}

// NewQueueMessage wraps a canonical notification for the given queue.
// The body is UTF-8 JSON, base64-encoded as the broker's binary attachment.
func NewQueueMessage(queueName string, n Notification) (QueueMessage, error) {
	env := Envelope{Type: n.Channel()}
	switch {
	case n.SMSDetails != nil:
		env.Message = n.SMSDetails.Message
		env.MobileNumber = n.SMSDetails.MobileNumber
		env.MessageLanguage = n.SMSDetails.MessageLanguage
		env.SenderCode = n.SMSDetails.SenderCode
	case n.EmailDetails != nil:
		env.Message = n.EmailDetails.Message
		env.Sender = n.EmailDetails.Sender
		env.Recipient = n.EmailDetails.Recipient
		env.Subject = n.EmailDetails.Subject
	default:
		return QueueMessage{}, fmt.Errorf("notification has no channel variant")
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return QueueMessage{}, fmt.Errorf("marshal envelope: %w", err)
	}
	body := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(body, raw)

	return QueueMessage{QueueName: queueName, Body: body}, nil
}

// DecodeEnvelope reverses NewQueueMessage's encoding.
func DecodeEnvelope(body []byte) (Envelope, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(body)))
	n, err := base64.StdEncoding.Decode(raw, body)
	if err != nil {
		return Envelope{}, fmt.Errorf("decode body: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw[:n], &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// PublishStatus classifies a publish batch outcome.
type PublishStatus string

const (
	PublishSuccess PublishStatus = "success"
	PublishFailure PublishStatus = "error"
)

// PublishOutcome is the aggregated result of one publish batch. Status is
// PublishSuccess only when AckedKeys covers every key sent in the batch.
type PublishOutcome struct {
	Status    PublishStatus `json:"status"`
	AckedKeys []string      `json:"ackedMessages"`
	Message   string        `json:"message,omitempty"`
}

// DeliveryOutcome is returned by a delivery provider.
type DeliveryOutcome struct {
	Success     bool
	ErrorDetail string
}
