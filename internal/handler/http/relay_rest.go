package httphandler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"notification-relay/internal/domain"
	"notification-relay/internal/normalizer"
	"notification-relay/internal/response"
	"notification-relay/internal/usecase"
)

// maxBodyBytes caps inbound request bodies at 1 MB.
const maxBodyBytes = 1 << 20

type RelayHandler struct {
	relay  *usecase.Relay
	logger *zap.Logger
}

func NewRelayHandler(relay *usecase.Relay, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{relay: relay, logger: logger}
}

type successResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	AckedMessages []string `json:"ackedMessages"`
}

type partialFailureDetail struct {
	TotalNotifications   int                       `json:"totalNotifications"`
	ValidCount           int                       `json:"validCount"`
	InvalidCount         int                       `json:"invalidCount"`
	InvalidNotifications []domain.ValidationResult `json:"invalidNotifications"`
	DeliveryResults      domain.PublishOutcome     `json:"deliveryResults"`
}

// SendNotification accepts a notification batch as JSON or legacy SOAP/XML,
// relays the valid items to the broker and reports the aggregate result:
// 200 when everything was accepted, 207 with the full breakdown otherwise.
func (h *RelayHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.WriteFault(w, http.StatusInternalServerError, "500", "Request Failed", "Unable to read request body")
		return
	}

	var report *usecase.Report
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		report, err = h.relay.HandleJSON(r.Context(), body)
	case strings.Contains(contentType, "application/xml"), strings.Contains(contentType, "text/xml"):
		report, err = h.relay.HandleSOAP(r.Context(), body)
	default:
		response.WriteFault(w, http.StatusInternalServerError, "500", "Request Failed",
			"Request body type is neither JSON nor SOAP")
		return
	}

	if err != nil {
		if errors.Is(err, normalizer.ErrMalformedInput) {
			response.WriteFault(w, http.StatusInternalServerError, "500", "Request Failed", err.Error())
			return
		}
		h.logger.Error("unhandled relay error", zap.Error(err))
		response.WriteFault(w, http.StatusInternalServerError, "500", "Internal Server Error", "Internal Server Error")
		return
	}

	if report.FullSuccess() {
		response.JSON(w, http.StatusOK, successResponse{
			Status:        "Success",
			Message:       "All notifications delivered successfully.",
			AckedMessages: report.Outcome.AckedKeys,
		})
		return
	}

	invalid := report.Invalid
	if invalid == nil {
		invalid = []domain.ValidationResult{}
	}
	response.WriteFault(w, http.StatusMultiStatus, "207",
		"Some notifications failed to send or were invalid.",
		partialFailureDetail{
			TotalNotifications:   report.Total,
			ValidCount:           report.Valid,
			InvalidCount:         len(invalid),
			InvalidNotifications: invalid,
			DeliveryResults:      report.Outcome,
		})
}
