package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDuplicateAccountPrechecks(t *testing.T) {
	InitializeTestDb()

	err := CreateEmailAccount(&EmailAccount{
		Email:        "Alerts@Example.com",
		Password:     "app-password",
		FriendlyName: "Alerts",
	})
	assert.Nil(t, err)

	// lookup is case-insensitive because the record is stored lowercased
	exists, err := EmailAccountExists("ALERTS@example.com")
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = EmailAccountExists("other@example.com")
	assert.Nil(t, err)
	assert.False(t, exists)

	err = CreateTwilioAccount(&TwilioAccount{
		AccountSid:   "AC123",
		AuthToken:    "token",
		TwilioNumber: "+15550001111",
		SenderName:   "Main",
	})
	assert.Nil(t, err)

	exists, err = TwilioAccountExists("AC123")
	assert.Nil(t, err)
	assert.True(t, exists)
}

func TestUpsertPhoneMappingOverwritesInPlace(t *testing.T) {
	InitializeTestDb()

	first, err := UpsertPhoneMapping("2345678901", "token-a", "android", nil)
	assert.Nil(t, err)
	assert.Equal(t, "token-a", first.PushToken)

	second, err := UpsertPhoneMapping("2345678901", "token-b", "", nil)
	assert.Nil(t, err)
	assert.Equal(t, first.ID, second.ID, "re-registering must not create a new row")
	assert.Equal(t, "token-b", second.PushToken)
	assert.Equal(t, "android", second.DeviceType, "omitted device type keeps the old value")

	count, err := CountPhoneMappings()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPushTokenLifecycle(t *testing.T) {
	InitializeTestDb()

	created, err := UpsertPushToken("tok-1", "", "Pixel 6", nil)
	assert.Nil(t, err)
	assert.Equal(t, "web", created.DeviceType, "device type defaults to web")
	assert.True(t, created.IsActive)

	err = DeactivatePushToken("tok-1")
	assert.Nil(t, err)

	tokens, err := ActivePushTokens()
	assert.Nil(t, err)
	assert.Empty(t, tokens)

	// re-registering revives the token
	revived, err := UpsertPushToken("tok-1", "ios", "", nil)
	assert.Nil(t, err)
	assert.Equal(t, created.ID, revived.ID)
	assert.True(t, revived.IsActive)
	assert.Equal(t, "ios", revived.DeviceType)

	err = DeactivatePushToken("never-registered")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestCreateUserDefaults(t *testing.T) {
	InitializeTestDb()

	user := &User{Email: "Donna@Example.com", Password: "very-secure"}
	err := CreateUser(user)
	assert.Nil(t, err)

	assert.Equal(t, "donna@example.com", user.Email)
	assert.Equal(t, "donna", user.Name)
	assert.Equal(t, BasicUserRole, user.Role)
	assert.NotEqual(t, "very-secure", user.Password, "password must be stored hashed")

	exists, err := UserExists("donna@example.com")
	assert.Nil(t, err)
	assert.True(t, exists)
}

func TestActiveContactsScope(t *testing.T) {
	InitializeTestDb()

	assert.Nil(t, CreateContact(&Contact{PhoneNumber: "2345678901", CarrierGateway: "vtext.com"}))
	assert.Nil(t, CreateContact(&Contact{PhoneNumber: "5551234567", CarrierGateway: "tmomail.net"}))

	// soft-delete one
	err := db.Model(&Contact{}).Where("phone_number = ?", "5551234567").Update("is_active", false).Error
	assert.Nil(t, err)

	contacts, err := ActiveContacts()
	assert.Nil(t, err)
	assert.Len(t, contacts, 1)
	assert.Equal(t, "2345678901", contacts[0].PhoneNumber)
}
