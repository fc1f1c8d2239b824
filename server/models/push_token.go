package models

import "gorm.io/gorm"

// PushToken is an opaque device identifier issued by a push provider,
// targeting one installed app instance.
type PushToken struct {
	BaseModel
	Token      string `json:"token" validate:"required" gorm:"not null;uniqueIndex"`
	UserID     *uint  `json:"user_id"`
	User       *User  `json:"user,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	DeviceType string `json:"deviceType" validate:"omitempty,oneof=android ios web" gorm:"default:web"`
	DeviceInfo string `json:"deviceInfo"`
	IsActive   bool   `json:"isActive" gorm:"default:true"`
}

// UpsertPushToken registers a device token, reviving and updating the
// record when the token is already known.
func UpsertPushToken(token, deviceType, deviceInfo string, userID *uint) (*PushToken, error) {
	record := PushToken{}
	err := db.First(&record, "token = ?", token).Error

	if err == gorm.ErrRecordNotFound {
		record = PushToken{Token: token, DeviceInfo: deviceInfo, UserID: userID, IsActive: true}
		record.DeviceType = deviceType
		if record.DeviceType == "" {
			record.DeviceType = "web"
		}

		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}

	if err != nil {
		return nil, err
	}

	if deviceType != "" {
		record.DeviceType = deviceType
	}
	if deviceInfo != "" {
		record.DeviceInfo = deviceInfo
	}
	if userID != nil {
		record.UserID = userID
	}
	record.IsActive = true

	if err := db.Save(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// DeactivatePushToken soft-deletes a token. Returns
// gorm.ErrRecordNotFound when the token was never registered.
func DeactivatePushToken(token string) error {
	result := db.Model(&PushToken{}).Where("token = ?", token).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func ActivePushTokens() ([]PushToken, error) {
	tokens := []PushToken{}
	err := db.Scopes(active).Preload("User").Order("created_at DESC").Find(&tokens).Error
	if err != nil {
		return nil, err
	}

	return tokens, nil
}
