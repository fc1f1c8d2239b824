// Package senders resolves a send request's sender field to a canonical
// Twilio credential. The field is one of:
//
//   - a legacy inline encoding "sid|token|number|name"
//   - the id of a stored TwilioAccount
//   - "default", the zero-config account from environment variables
package senders

import (
	"errors"
	"strings"

	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/server/twilio"
	"gorm.io/gorm"
)

const DefaultSenderID = "default"

var (
	ErrInvalidCredential = errors.New("invalid Twilio account configuration")
	ErrNotFound          = errors.New("Twilio account not found")
)

// Resolve turns the request's sender value into a credential. fallback is
// the environment-provided account (may be nil when unconfigured).
func Resolve(sender string, fallback *twilio.Credential) (*twilio.Credential, error) {
	if strings.Contains(sender, "|") {
		return parseInline(sender)
	}

	if sender == DefaultSenderID {
		if fallback == nil || fallback.AccountSid == "" {
			return nil, ErrNotFound
		}
		return fallback, nil
	}

	account, err := models.FindTwilioAccount(sender)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &twilio.Credential{
		AccountSid:   account.AccountSid,
		AuthToken:    account.AuthToken,
		PhoneNumber:  account.TwilioNumber,
		FriendlyName: account.SenderName,
	}, nil
}

func parseInline(sender string) (*twilio.Credential, error) {
	parts := strings.Split(sender, "|")
	for len(parts) < 4 {
		parts = append(parts, "")
	}

	credential := &twilio.Credential{
		AccountSid:   parts[0],
		AuthToken:    parts[1],
		PhoneNumber:  parts[2],
		FriendlyName: parts[3],
	}

	if credential.AccountSid == "" || credential.AuthToken == "" || credential.PhoneNumber == "" {
		return nil, ErrInvalidCredential
	}

	return credential, nil
}
