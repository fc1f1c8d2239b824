package twilio

import (
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Credential is the canonical form every sender encoding resolves to
// before a Twilio client is built from it.
type Credential struct {
	AccountSid   string
	AuthToken    string
	PhoneNumber  string
	FriendlyName string
}

type ClientWrapper struct {
	client *twilio.RestClient
	from   string
}

func NewClient(credential *Credential) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: credential.AccountSid,
		Password: credential.AuthToken,
	})

	return &ClientWrapper{client: client, from: credential.PhoneNumber}
}

// SendSMS delivers a plain text message and returns the provider's
// message SID.
func (cw *ClientWrapper) SendSMS(to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(cw.from)
	params.SetTo(FormatPhone(to))
	params.SetBody(body)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return "", err
	}

	return sidOf(resp), nil
}

// SendMMS delivers a message with a media attachment. mediaURL must be a
// publicly reachable HTTPS URL; Twilio fetches it server-side.
func (cw *ClientWrapper) SendMMS(to, body, mediaURL string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(cw.from)
	params.SetTo(FormatPhone(to))
	params.SetBody(body)
	params.SetMediaUrl([]string{mediaURL})

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return "", err
	}

	return sidOf(resp), nil
}

// FormatPhone prefixes '+' unless already present, stripping spaces.
func FormatPhone(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}

	return "+" + strings.ReplaceAll(phone, " ", "")
}

func sidOf(resp *openapi.ApiV2010Message) string {
	if resp == nil || resp.Sid == nil {
		return ""
	}

	return *resp.Sid
}
