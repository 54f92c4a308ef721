package validator

import (
	"fmt"
	"regexp"

	"notification-relay/internal/domain"
)

var (
	// Local 8-digit numbers starting with 3, 5, 6 or 7.
	mobileRe = regexp.MustCompile(`^[3567]\d{7}$`)
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validate checks one canonical item against its channel's field rules and
// returns the errors in declaration order. It never rejects the request as a
// whole; an empty result means the item is deliverable.
//
// The error strings are part of the 207 response contract and must stay
// stable for existing integrations.
func Validate(item domain.Notification) []string {
	var errs []string

	switch {
	case item.SMSDetails != nil:
		sms := item.SMSDetails
		if sms.Message == "" {
			errs = append(errs, "Missing smsDetails.message")
		}
		if sms.MobileNumber == "" {
			errs = append(errs, "Missing smsDetails.mobileNumber")
		}
		if sms.MessageLanguage == "" {
			errs = append(errs, "Missing smsDetails.messageLanguage")
		}
		if sms.MobileNumber != "" && !mobileRe.MatchString(sms.MobileNumber) {
			errs = append(errs, "Invalid mobile number format (8 digits starting with 3/5/6/7)")
		}

	case item.EmailDetails != nil:
		email := item.EmailDetails
		if email.Sender == "" {
			errs = append(errs, "Missing emailDetails.sender")
		}
		// A present-but-empty recipient list is not "missing"; it only
		// trips the non-empty-array rule below.
		if email.Recipient == nil {
			errs = append(errs, "Missing emailDetails.recipient")
		}
		if email.Subject == "" {
			errs = append(errs, "Missing emailDetails.subject")
		}
		if email.Message == "" {
			errs = append(errs, "Missing emailDetails.message")
		}
		if email.Sender != "" && !emailRe.MatchString(email.Sender) {
			errs = append(errs, "Invalid email format in sender")
		}
		if len(email.Recipient) == 0 {
			errs = append(errs, "Recipient must be a non-empty array of emails")
		} else {
			for i, r := range email.Recipient {
				if !emailRe.MatchString(r) {
					errs = append(errs, fmt.Sprintf("Invalid email format in recipient[%d]", i))
				}
			}
		}

	default:
		errs = append(errs, "Notification must contain smsDetails or emailDetails")
	}

	return errs
}

// ValidateAll partitions a normalized sequence into deliverable items and
// per-item failure reports, preserving input order.
func ValidateAll(items []domain.Notification) (valid []domain.Notification, invalid []domain.ValidationResult) {
	for i, item := range items {
		if errs := Validate(item); len(errs) > 0 {
			invalid = append(invalid, domain.ValidationResult{Index: i, Item: item, Errors: errs})
			continue
		}
		valid = append(valid, item)
	}
	return valid, invalid
}
