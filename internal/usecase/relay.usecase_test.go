package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notification-relay/internal/domain"
	"notification-relay/internal/normalizer"
	"notification-relay/internal/usecase"
)

// stubPublisher acknowledges everything and remembers the batch.
type stubPublisher struct {
	batches [][]domain.QueueMessage
	outcome *domain.PublishOutcome // nil means auto-success
}

func (p *stubPublisher) Publish(_ context.Context, batch []domain.QueueMessage) domain.PublishOutcome {
	p.batches = append(p.batches, batch)
	if p.outcome != nil {
		return *p.outcome
	}
	keys := make([]string, len(batch))
	for i := range batch {
		keys[i] = "ck-test"
	}
	return domain.PublishOutcome{Status: domain.PublishSuccess, AckedKeys: keys}
}

func newRelay(p usecase.Publisher) *usecase.Relay {
	return usecase.NewRelay(p, "backend-q", "apim-q", zap.NewNop())
}

func TestHandleJSON_ValidSMS(t *testing.T) {
	pub := &stubPublisher{}
	r := newRelay(pub)

	report, err := r.HandleJSON(context.Background(),
		[]byte(`{"smsDetails":{"message":"hi","mobileNumber":"51234567","messageLanguage":"en"}}`))
	require.NoError(t, err)

	assert.True(t, report.FullSuccess())
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.Empty(t, report.Invalid)
	assert.Len(t, report.Outcome.AckedKeys, 1)

	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	assert.Equal(t, "backend-q", pub.batches[0][0].QueueName)

	env, err := domain.DecodeEnvelope(pub.batches[0][0].Body)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelSMS, env.Type)
	assert.Equal(t, "hi", env.Message)
}

func TestHandleSOAP_UsesAPIMQueue(t *testing.T) {
	pub := &stubPublisher{}
	r := newRelay(pub)

	body := `<Envelope><Body><NotificationsendNotificationRequest1><sendNotification>
		<notificationMessage><smsDetails>
			<message>hi</message><mobileNumber>51234567</mobileNumber><messageLanguage>en</messageLanguage>
		</smsDetails></notificationMessage>
	</sendNotification></NotificationsendNotificationRequest1></Body></Envelope>`

	report, err := r.HandleSOAP(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.True(t, report.FullSuccess())

	require.Len(t, pub.batches, 1)
	assert.Equal(t, "apim-q", pub.batches[0][0].QueueName)
}

func TestHandleJSON_MixedValidity(t *testing.T) {
	pub := &stubPublisher{}
	r := newRelay(pub)

	body := `[
		{"emailDetails":{"sender":"a@b.co","recipient":["x@y.co"],"subject":"s","message":"m"}},
		{"smsDetails":{"message":"hi","messageLanguage":"en"}}
	]`
	report, err := r.HandleJSON(context.Background(), []byte(body))
	require.NoError(t, err)

	assert.False(t, report.FullSuccess())
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Valid)
	require.Len(t, report.Invalid, 1)
	assert.Equal(t, 1, report.Invalid[0].Index)
	assert.Contains(t, report.Invalid[0].Errors, "Missing smsDetails.mobileNumber")

	// Only the valid item was published.
	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	env, err := domain.DecodeEnvelope(pub.batches[0][0].Body)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, env.Type)
}

func TestHandleJSON_AllInvalidIsNotFullSuccess(t *testing.T) {
	pub := &stubPublisher{}
	r := newRelay(pub)

	report, err := r.HandleJSON(context.Background(), []byte(`{"smsDetails":{"message":"hi"}}`))
	require.NoError(t, err)

	assert.False(t, report.FullSuccess())
	assert.Equal(t, 0, report.Valid)
	// The publisher still sees the (empty) batch and short-circuits.
	require.Len(t, pub.batches, 1)
	assert.Empty(t, pub.batches[0])
	assert.Equal(t, domain.PublishSuccess, report.Outcome.Status)
}

func TestHandleJSON_PublishFailure(t *testing.T) {
	pub := &stubPublisher{outcome: &domain.PublishOutcome{
		Status:    domain.PublishFailure,
		AckedKeys: []string{},
		Message:   "broker connection failed",
	}}
	r := newRelay(pub)

	report, err := r.HandleJSON(context.Background(),
		[]byte(`{"smsDetails":{"message":"hi","mobileNumber":"51234567","messageLanguage":"en"}}`))
	require.NoError(t, err)

	assert.False(t, report.FullSuccess())
	assert.Equal(t, domain.PublishFailure, report.Outcome.Status)
}

func TestHandleJSON_Malformed(t *testing.T) {
	r := newRelay(&stubPublisher{})
	_, err := r.HandleJSON(context.Background(), []byte(`{broken`))
	assert.ErrorIs(t, err, normalizer.ErrMalformedInput)
}
