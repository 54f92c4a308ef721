package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-relay/internal/domain"
	"notification-relay/internal/normalizer"
)

func TestFromJSON_SingleObject(t *testing.T) {
	body := []byte(`{"smsDetails":{"message":"hi","mobileNumber":"51234567","messageLanguage":"en"}}`)

	items, err := normalizer.FromJSON(body)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SMSDetails)
	assert.Equal(t, "51234567", items[0].SMSDetails.MobileNumber)
}

func TestFromJSON_ArrayPreservesOrder(t *testing.T) {
	body := []byte(`[
		{"smsDetails":{"message":"first","mobileNumber":"51234567","messageLanguage":"en"}},
		{"emailDetails":{"sender":"a@b.co","recipient":["c@d.co"],"subject":"s","message":"second"}},
		{"smsDetails":{"message":"third","mobileNumber":"61234567","messageLanguage":"ar"}}
	]`)

	items, err := normalizer.FromJSON(body)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].SMSDetails.Message)
	assert.Equal(t, "second", items[1].EmailDetails.Message)
	assert.Equal(t, "third", items[2].SMSDetails.Message)
}

func TestFromJSON_ArrayWithNonObjectElements(t *testing.T) {
	// A well-formed array is accepted even when some elements are not
	// notification objects; those become empty items for the validator to
	// reject individually.
	body := []byte(`[1, {"smsDetails":{"message":"hi","mobileNumber":"51234567","messageLanguage":"en"}}, "x"]`)

	items, err := normalizer.FromJSON(body)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, domain.Notification{}, items[0])
	require.NotNil(t, items[1].SMSDetails)
	assert.Equal(t, "hi", items[1].SMSDetails.Message)
	assert.Equal(t, domain.Notification{}, items[2])
}

func TestFromJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"broken object", `{"smsDetails":`},
		{"broken array", `[{"smsDetails":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizer.FromJSON([]byte(tt.body))
			assert.ErrorIs(t, err, normalizer.ErrMalformedInput)
		})
	}
}

const soapSingle = `<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:v1="urn:v1" xmlns:v12="urn:v12">
  <soapenv:Body>
    <v1:NotificationsendNotificationRequest1>
      <v1:sendNotification>
        <v12:notificationMessage>
          <v12:smsDetails>
            <v12:message>  hello  </v12:message>
            <v12:mobileNumber> 51234567 </v12:mobileNumber>
            <v12:messageLanguage>en</v12:messageLanguage>
          </v12:smsDetails>
        </v12:notificationMessage>
      </v1:sendNotification>
    </v1:NotificationsendNotificationRequest1>
  </soapenv:Body>
</soapenv:Envelope>`

func TestFromSOAP_SingleMessage(t *testing.T) {
	items, err := normalizer.FromSOAP([]byte(soapSingle))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SMSDetails)
	assert.Equal(t, "hello", items[0].SMSDetails.Message)
	assert.Equal(t, "51234567", items[0].SMSDetails.MobileNumber)
}

const soapMulti = `<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:v1="urn:v1" xmlns:v12="urn:v12">
  <soapenv:Body>
    <v1:NotificationsendNotificationRequest1>
      <v1:sendNotification>
        <v12:notificationMessage>
          <v12:smsDetails>
            <v12:message>one</v12:message>
            <v12:mobileNumber>51234567</v12:mobileNumber>
            <v12:messageLanguage>en</v12:messageLanguage>
          </v12:smsDetails>
        </v12:notificationMessage>
        <v12:notificationMessage>
          <v12:emailDetails>
            <v12:sender>a@b.co
</v12:sender>
            <v12:recipient>	x@y.co</v12:recipient>
            <v12:recipient>z@y.co</v12:recipient>
            <v12:subject>two</v12:subject>
            <v12:message>body</v12:message>
          </v12:emailDetails>
        </v12:notificationMessage>
      </v1:sendNotification>
    </v1:NotificationsendNotificationRequest1>
  </soapenv:Body>
</soapenv:Envelope>`

func TestFromSOAP_MultipleMessagesPreserveOrder(t *testing.T) {
	items, err := normalizer.FromSOAP([]byte(soapMulti))
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].SMSDetails)
	assert.Equal(t, "one", items[0].SMSDetails.Message)

	require.NotNil(t, items[1].EmailDetails)
	// Embedded newlines and tabs must be stripped from address fields.
	assert.Equal(t, "a@b.co", items[1].EmailDetails.Sender)
	assert.Equal(t, []string{"x@y.co", "z@y.co"}, items[1].EmailDetails.Recipient)
}

func TestFromSOAP_MissingPath(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "this is not xml at all {"},
		{"empty envelope", `<Envelope><Body></Body></Envelope>`},
		{"no messages", `<Envelope><Body><NotificationsendNotificationRequest1><sendNotification></sendNotification></NotificationsendNotificationRequest1></Body></Envelope>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := normalizer.FromSOAP([]byte(tt.body))
			assert.ErrorIs(t, err, normalizer.ErrMalformedInput)
			assert.Nil(t, items)
		})
	}
}

func TestFromSOAP_ItemWithNeitherVariant(t *testing.T) {
	body := `<Envelope><Body><NotificationsendNotificationRequest1><sendNotification>
		<notificationMessage><somethingElse>x</somethingElse></notificationMessage>
	</sendNotification></NotificationsendNotificationRequest1></Body></Envelope>`

	items, err := normalizer.FromSOAP([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	// Left to the validator to reject.
	assert.Equal(t, "", items[0].Channel())
	assert.Equal(t, domain.Notification{}, items[0])
}
