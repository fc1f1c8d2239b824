package models

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

// active keeps soft-deleted records out of read paths.
func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
