package delivery_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notification-relay/internal/delivery"
	"notification-relay/internal/domain"
)

func smsEnvelope() domain.Envelope {
	return domain.Envelope{
		Type:            domain.ChannelSMS,
		Message:         "hello",
		MobileNumber:    "51234567",
		MessageLanguage: "en",
	}
}

func TestSMSSender_Success(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := delivery.NewSMSSender(srv.URL, "app-1", "pw", zap.NewNop())
	outcome := s.AttemptDelivery(context.Background(), smsEnvelope())

	assert.True(t, outcome.Success)
	assert.Equal(t, "app-1", got["ApplicationID"])
	assert.Equal(t, "51234567", got["MobileNumber"])
	assert.Equal(t, "hello", got["MessageText"])
	assert.Equal(t, "true", got["ConfirmDelivery"])
	assert.Equal(t, "1", got["Priority"])
}

func TestSMSSender_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient balance", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := delivery.NewSMSSender(srv.URL, "app-1", "pw", zap.NewNop())
	outcome := s.AttemptDelivery(context.Background(), smsEnvelope())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "insufficient balance")
}

func TestSMSSender_Unreachable(t *testing.T) {
	// A closed server gives a connection error, which comes back as data.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := delivery.NewSMSSender(srv.URL, "app-1", "pw", zap.NewNop())
	outcome := s.AttemptDelivery(context.Background(), smsEnvelope())

	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.ErrorDetail)
}
