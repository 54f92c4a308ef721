package broker

import (
	"context"
	"errors"
	"time"

	"notification-relay/internal/domain"
)

// MessageTTL is the broker-side time-to-live stamped on every published
// message. Expiry enforcement is the broker's job, not ours.
const MessageTTL = 5 * time.Minute

// ErrBrokerConnect fails a whole publish batch; there is no partial credit
// when the session never comes up.
var ErrBrokerConnect = errors.New("broker connection failed")

// AckEvent reports the broker's settlement of one published message,
// matched back to the batch by correlation key. A non-nil Err is a
// negative acknowledgment.
type AckEvent struct {
	CorrelationKey string
	Err            error
}

// Session is one publish session against the broker. Send is asynchronous;
// settlements arrive on Acks in arbitrary order.
type Session interface {
	Send(msg domain.QueueMessage) error
	Acks() <-chan AckEvent
	Close() error
}

// SessionFactory opens publish sessions. The publisher opens exactly one
// session per batch and none at all for an empty batch.
type SessionFactory interface {
	Connect(ctx context.Context) (Session, error)
}

// Forwarder publishes one message body, unmodified, to a dead-letter queue.
// It is best-effort: callers log its error and move on.
type Forwarder interface {
	Forward(ctx context.Context, dlqName string, payload []byte) error
}
