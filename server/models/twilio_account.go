package models

import (
	"errors"

	"gorm.io/gorm"
)

// TwilioAccount is a Twilio sub-account used to originate SMS/MMS.
type TwilioAccount struct {
	BaseModel
	AccountSid   string `json:"account_sid" validate:"required" gorm:"not null;uniqueIndex"`
	AuthToken    string `json:"-" validate:"required" gorm:"not null"`
	TwilioNumber string `json:"twilio_number" validate:"required" gorm:"not null"`
	SenderName   string `json:"sender_name" validate:"required" gorm:"not null"`
	IsActive     bool   `json:"isActive" gorm:"default:true"`
}

func CreateTwilioAccount(account *TwilioAccount) error {
	account.IsActive = true
	return db.Create(account).Error
}

func ActiveTwilioAccounts() ([]TwilioAccount, error) {
	accounts := []TwilioAccount{}
	err := db.Scopes(active).Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func FindTwilioAccount(id interface{}) (*TwilioAccount, error) {
	account := TwilioAccount{}
	err := db.First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// TwilioAccountExists is the duplicate pre-check run before insert.
func TwilioAccountExists(accountSid string) (bool, error) {
	err := db.First(&TwilioAccount{}, "account_sid = ?", accountSid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
