package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// EmailAccount is an SMTP mailbox used to originate outbound email.
type EmailAccount struct {
	BaseModel
	Email        string `json:"email" validate:"required,email" gorm:"not null;uniqueIndex"`
	Password     string `json:"-" validate:"required" gorm:"not null"`
	FriendlyName string `json:"friendlyName" validate:"required" gorm:"not null"`
	IsActive     bool   `json:"isActive" gorm:"default:true"`
}

func CreateEmailAccount(account *EmailAccount) error {
	account.Email = strings.ToLower(account.Email)
	account.IsActive = true
	return db.Create(account).Error
}

func ActiveEmailAccounts() ([]EmailAccount, error) {
	accounts := []EmailAccount{}
	err := db.Scopes(active).Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func FindEmailAccount(id interface{}) (*EmailAccount, error) {
	account := EmailAccount{}
	err := db.First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// EmailAccountExists is the duplicate pre-check run before insert.
func EmailAccountExists(email string) (bool, error) {
	err := db.First(&EmailAccount{}, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
