package models

// Contact is a phone number paired with its carrier's SMS-to-email
// gateway domain. Both are stored pre-normalized.
type Contact struct {
	BaseModel
	PhoneNumber    string `json:"phone_number" validate:"required" gorm:"not null"`
	CarrierGateway string `json:"carrier_gateway" validate:"required" gorm:"not null"`
	DisplayName    string `json:"displayName"`
	IsActive       bool   `json:"isActive" gorm:"default:true"`
}

func CreateContact(contact *Contact) error {
	contact.IsActive = true
	return db.Create(contact).Error
}

func ActiveContacts() ([]Contact, error) {
	contacts := []Contact{}
	err := db.Scopes(active).Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}
