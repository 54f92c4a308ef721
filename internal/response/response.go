package response

import (
	"encoding/json"
	"net/http"
)

// Fault mirrors the SOAP-style fault envelope the legacy service returned on
// every non-200 outcome; existing callers parse it, so the shape is frozen.
type Fault struct {
	FaultCode   string `json:"faultcode"`
	FaultString string `json:"faultstring"`
	FaultActor  string `json:"faultactor"`
	Detail      Detail `json:"detail"`
}

type Detail struct {
	SendNotificationFault any `json:"sendNotificationFault"`
}

type FaultEnvelope struct {
	Fault Fault `json:"Fault"`
}

// JSON writes a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteFault writes the fault envelope with detail as the
// sendNotificationFault payload.
func WriteFault(w http.ResponseWriter, status int, code, message string, detail any) {
	JSON(w, status, FaultEnvelope{Fault: Fault{
		FaultCode:   code,
		FaultString: message,
		Detail:      Detail{SendNotificationFault: detail},
	}})
}
