package normalizer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"notification-relay/internal/domain"
)

// ErrMalformedInput is returned when the request body does not contain the
// structure the declared content type promises. It is a request-level
// failure, never a silent empty result.
var ErrMalformedInput = errors.New("malformed input")

// FromJSON normalizes a JSON body into an ordered item sequence.
// A single object becomes a one-element sequence; an array is taken as the
// sequence itself, order preserved.
func FromJSON(body []byte) ([]domain.Notification, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty JSON body", ErrMalformedInput)
	}

	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		// Elements that are not notification objects stay zero-valued and
		// get reported per item by validation, not as a request failure.
		items := make([]domain.Notification, len(raws))
		for i, raw := range raws {
			if err := json.Unmarshal(raw, &items[i]); err != nil {
				items[i] = domain.Notification{}
			}
		}
		return items, nil
	}

	var item domain.Notification
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return []domain.Notification{item}, nil
}

// Structures matching the legacy SOAP request. encoding/xml matches on local
// names, so the v1/v12 namespace prefixes on the wire are irrelevant here.
type soapEnvelope struct {
	Body soapBody `xml:"Body"`
}

type soapBody struct {
	Request *soapRequest `xml:"NotificationsendNotificationRequest1"`
}

type soapRequest struct {
	Send *soapSend `xml:"sendNotification"`
}

type soapSend struct {
	Messages []soapMessage `xml:"notificationMessage"`
}

type soapMessage struct {
	SMS   *soapSMS   `xml:"smsDetails"`
	Email *soapEmail `xml:"emailDetails"`
}

type soapSMS struct {
	Message         string `xml:"message"`
	MobileNumber    string `xml:"mobileNumber"`
	MessageLanguage string `xml:"messageLanguage"`
	SenderCode      string `xml:"senderCode"`
}

type soapEmail struct {
	Sender    string   `xml:"sender"`
	Recipient []string `xml:"recipient"`
	Subject   string   `xml:"subject"`
	Message   string   `xml:"message"`
}

// FromSOAP extracts notification messages from the fixed envelope path
// Envelope > Body > NotificationsendNotificationRequest1 > sendNotification >
// notificationMessage. A lone message normalizes to a one-element sequence;
// a missing level of the path is ErrMalformedInput.
//
// Every field is trimmed of surrounding whitespace. Email string fields
// additionally strip embedded CR/LF/TAB so a crafted value cannot smuggle
// extra SMTP headers.
func FromSOAP(body []byte) ([]domain.Notification, error) {
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if env.Body.Request == nil || env.Body.Request.Send == nil {
		return nil, fmt.Errorf("%w: missing sendNotification element", ErrMalformedInput)
	}
	msgs := env.Body.Request.Send.Messages
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: missing notificationMessage element", ErrMalformedInput)
	}

	items := make([]domain.Notification, 0, len(msgs))
	for _, msg := range msgs {
		var item domain.Notification
		if msg.SMS != nil {
			item.SMSDetails = &domain.SMSDetails{
				Message:         strings.TrimSpace(msg.SMS.Message),
				MobileNumber:    strings.TrimSpace(msg.SMS.MobileNumber),
				MessageLanguage: strings.TrimSpace(msg.SMS.MessageLanguage),
				SenderCode:      strings.TrimSpace(msg.SMS.SenderCode),
			}
		}
		if msg.Email != nil {
			recipients := make([]string, 0, len(msg.Email.Recipient))
			for _, r := range msg.Email.Recipient {
				recipients = append(recipients, sanitizeHeader(r))
			}
			item.EmailDetails = &domain.EmailDetails{
				Sender:    sanitizeHeader(msg.Email.Sender),
				Recipient: recipients,
				Subject:   strings.TrimSpace(msg.Email.Subject),
				Message:   strings.TrimSpace(msg.Email.Message),
			}
		}
		items = append(items, item)
	}
	return items, nil
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", "", "\t", "")

func sanitizeHeader(s string) string {
	return headerSanitizer.Replace(strings.TrimSpace(s))
}
