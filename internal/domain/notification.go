package domain

// Channel discriminators carried on the queue wire envelope.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// SMSDetails is the SMS variant of a canonical notification.
type SMSDetails struct {
	Message         string `json:"message"`
	MobileNumber    string `json:"mobileNumber"`
	MessageLanguage string `json:"messageLanguage"`
	SenderCode      string `json:"senderCode,omitempty"`
}

// EmailDetails is the email variant of a canonical notification.
type EmailDetails struct {
	Sender    string   `json:"sender"`
	Recipient []string `json:"recipient"`
	Subject   string   `json:"subject"`
	Message   string   `json:"message"`
}

// Notification is the canonical, format-independent form of one inbound
// notification item. Exactly one of SMSDetails/EmailDetails is set on a
// well-formed item; an item with neither is rejected by the validator.
type Notification struct {
	SMSDetails   *SMSDetails   `json:"smsDetails,omitempty"`
	EmailDetails *EmailDetails `json:"emailDetails,omitempty"`
}

// Channel returns the wire discriminator for the populated variant,
// or "" when neither variant is set.
func (n Notification) Channel() string {
	switch {
	case n.SMSDetails != nil:
		return ChannelSMS
	case n.EmailDetails != nil:
		return ChannelEmail
	default:
		return ""
	}
}

// ValidationResult pairs one inbound item with its field errors.
// An empty Errors slice means the item is deliverable.
type ValidationResult struct {
	Index  int          `json:"index"`
	Item   Notification `json:"item"`
	Errors []string     `json:"errors"`
}
