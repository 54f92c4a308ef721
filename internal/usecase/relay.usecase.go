package usecase

import (
	"context"

	"go.uber.org/zap"

	"notification-relay/internal/domain"
	"notification-relay/internal/normalizer"
	"notification-relay/internal/validator"
)

// Publisher is the publish half of the broker pipeline.
type Publisher interface {
	Publish(ctx context.Context, batch []domain.QueueMessage) domain.PublishOutcome
}

// Report is the structured result of one inbound request: the validation
// breakdown plus the aggregated publish outcome for the valid items.
type Report struct {
	Total   int
	Valid   int
	Invalid []domain.ValidationResult
	Outcome domain.PublishOutcome
}

// FullSuccess reports whether the caller gets an unqualified 200: every item
// valid and every published message acknowledged. An empty request publishes
// nothing and still counts as success; "all items invalid" does not.
func (r *Report) FullSuccess() bool {
	return len(r.Invalid) == 0 && r.Outcome.Status == domain.PublishSuccess
}

// Relay runs the ingress pipeline: normalize, validate, wrap for the
// ingress-specific queue, publish as one batch.
type Relay struct {
	publisher    Publisher
	backendQueue string // JSON-origin requests
	apimQueue    string // SOAP-origin requests
	logger       *zap.Logger
}

func NewRelay(publisher Publisher, backendQueue, apimQueue string, logger *zap.Logger) *Relay {
	return &Relay{
		publisher:    publisher,
		backendQueue: backendQueue,
		apimQueue:    apimQueue,
		logger:       logger,
	}
}

// HandleJSON processes a JSON-origin request body.
func (r *Relay) HandleJSON(ctx context.Context, body []byte) (*Report, error) {
	items, err := normalizer.FromJSON(body)
	if err != nil {
		return nil, err
	}
	return r.relay(ctx, items, r.backendQueue), nil
}

// HandleSOAP processes a legacy SOAP/XML-origin request body.
func (r *Relay) HandleSOAP(ctx context.Context, body []byte) (*Report, error) {
	items, err := normalizer.FromSOAP(body)
	if err != nil {
		return nil, err
	}
	return r.relay(ctx, items, r.apimQueue), nil
}

func (r *Relay) relay(ctx context.Context, items []domain.Notification, queueName string) *Report {
	valid, invalid := validator.ValidateAll(items)

	batch := make([]domain.QueueMessage, 0, len(valid))
	for _, item := range valid {
		msg, err := domain.NewQueueMessage(queueName, item)
		if err != nil {
			// Unreachable for validated items; treated as a validation miss
			// rather than dropping the item silently.
			invalid = append(invalid, domain.ValidationResult{
				Item:   item,
				Errors: []string{err.Error()},
			})
			continue
		}
		batch = append(batch, msg)
	}

	outcome := r.publisher.Publish(ctx, batch)
	r.logger.Info("relay request processed",
		zap.String("queue", queueName),
		zap.Int("total", len(items)),
		zap.Int("valid", len(batch)),
		zap.Int("invalid", len(invalid)),
		zap.String("publish_status", string(outcome.Status)),
	)

	return &Report{
		Total:   len(items),
		Valid:   len(batch),
		Invalid: invalid,
		Outcome: outcome,
	}
}
