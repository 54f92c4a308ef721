package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"notification-relay/internal/domain"
)

// SMSSender delivers SMS notifications through the provider's HTTP gateway.
type SMSSender struct {
	gatewayURL    string
	applicationID string
	password      string
	client        *http.Client
	logger        *zap.Logger
}

func NewSMSSender(gatewayURL, applicationID, password string, logger *zap.Logger) *SMSSender {
	return &SMSSender{
		gatewayURL:    gatewayURL,
		applicationID: applicationID,
		password:      password,
		client:        &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

func (s *SMSSender) AttemptDelivery(ctx context.Context, env domain.Envelope) domain.DeliveryOutcome {
	start := time.Now()

	payload := map[string]string{
		"ApplicationID":   s.applicationID,
		"Password":        s.password,
		"MobileNumber":    env.MobileNumber,
		"MessageText":     env.Message,
		"ConfirmDelivery": "true",
		"Priority":        "1",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DeliveryOutcome{ErrorDetail: fmt.Sprintf("marshal sms payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return domain.DeliveryOutcome{ErrorDetail: fmt.Sprintf("build sms request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("sms gateway unreachable",
			zap.String("mobile", env.MobileNumber),
			zap.Error(err),
		)
		return domain.DeliveryOutcome{ErrorDetail: fmt.Sprintf("http error: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("sms gateway rejected message",
			zap.String("mobile", env.MobileNumber),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
			zap.ByteString("response", respBody),
		)
		return domain.DeliveryOutcome{ErrorDetail: fmt.Sprintf("sms api error: %s", string(respBody))}
	}

	s.logger.Info("sms sent",
		zap.String("mobile", env.MobileNumber),
		zap.Duration("duration", duration),
	)
	return domain.DeliveryOutcome{Success: true}
}
