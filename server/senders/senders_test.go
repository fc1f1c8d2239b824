package senders

import (
	"fmt"
	"testing"

	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/server/twilio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInline(t *testing.T) {
	credential, err := Resolve("AC123|secret|+15550001111|Main", nil)
	require.Nil(t, err)
	assert.Equal(t, "AC123", credential.AccountSid)
	assert.Equal(t, "+15550001111", credential.PhoneNumber)
	assert.Equal(t, "Main", credential.FriendlyName)

	// friendly name is optional in the legacy encoding
	credential, err = Resolve("AC123|secret|+15550001111", nil)
	require.Nil(t, err)
	assert.Equal(t, "", credential.FriendlyName)

	_, err = Resolve("AC123||+15550001111|Main", nil)
	assert.Equal(t, ErrInvalidCredential, err)
}

func TestResolveStoredAccount(t *testing.T) {
	models.InitializeTestDb()

	account := &models.TwilioAccount{
		AccountSid:   "AC456",
		AuthToken:    "token",
		TwilioNumber: "+15550002222",
		SenderName:   "Backup",
	}
	require.Nil(t, models.CreateTwilioAccount(account))

	credential, err := Resolve(fmt.Sprint(account.ID), nil)
	require.Nil(t, err)
	assert.Equal(t, "AC456", credential.AccountSid)

	_, err = Resolve("999", nil)
	assert.Equal(t, ErrNotFound, err)
}

func TestResolveDefault(t *testing.T) {
	fallback := &twilio.Credential{AccountSid: "ACenv", AuthToken: "t", PhoneNumber: "+15550003333"}

	credential, err := Resolve(DefaultSenderID, fallback)
	require.Nil(t, err)
	assert.Equal(t, "ACenv", credential.AccountSid)

	_, err = Resolve(DefaultSenderID, nil)
	assert.Equal(t, ErrNotFound, err)
}
