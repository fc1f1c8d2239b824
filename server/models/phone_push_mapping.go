package models

import "gorm.io/gorm"

// PhonePushMapping links a normalized phone number to the push token of
// the device that registered it. One row per phone; re-registering
// overwrites the token in place.
type PhonePushMapping struct {
	BaseModel
	PhoneNumber string `json:"phone_number" validate:"required" gorm:"not null;uniqueIndex"`
	PushToken   string `json:"push_token" validate:"required" gorm:"not null"`
	DeviceType  string `json:"deviceType" validate:"omitempty,oneof=android ios web" gorm:"default:web"`
	UserID      *uint  `json:"user_id"`
	IsActive    bool   `json:"isActive" gorm:"default:true"`
}

// UpsertPhoneMapping registers (or re-registers) a phone number's push
// token. The phone number must already be normalized by the caller.
func UpsertPhoneMapping(phoneNumber, pushToken, deviceType string, userID *uint) (*PhonePushMapping, error) {
	mapping := PhonePushMapping{}
	err := db.First(&mapping, "phone_number = ?", phoneNumber).Error

	if err == gorm.ErrRecordNotFound {
		mapping = PhonePushMapping{
			PhoneNumber: phoneNumber,
			PushToken:   pushToken,
			UserID:      userID,
			IsActive:    true,
		}
		mapping.DeviceType = deviceType
		if mapping.DeviceType == "" {
			mapping.DeviceType = "web"
		}

		if err := db.Create(&mapping).Error; err != nil {
			return nil, err
		}
		return &mapping, nil
	}

	if err != nil {
		return nil, err
	}

	mapping.PushToken = pushToken
	if deviceType != "" {
		mapping.DeviceType = deviceType
	}
	if userID != nil {
		mapping.UserID = userID
	}
	mapping.IsActive = true

	if err := db.Save(&mapping).Error; err != nil {
		return nil, err
	}

	return &mapping, nil
}

// ActiveMappingsForPhones looks up push tokens for a set of normalized
// phone numbers. Phones without a mapping are simply absent from the result.
func ActiveMappingsForPhones(phoneNumbers []string) ([]PhonePushMapping, error) {
	mappings := []PhonePushMapping{}
	err := db.Scopes(active).Where("phone_number IN ?", phoneNumbers).Find(&mappings).Error
	if err != nil {
		return nil, err
	}

	return mappings, nil
}

func CountPhoneMappings() (int64, error) {
	var count int64
	err := db.Model(&PhonePushMapping{}).Count(&count).Error
	return count, err
}
