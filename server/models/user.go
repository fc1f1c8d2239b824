package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/obiesoto/herald/server/auth"
	"gorm.io/gorm"
)

const (
	AdminUserRole = "admin"
	BasicUserRole = "user"
)

type User struct {
	BaseModel
	Email    string `json:"email" validate:"required,email" gorm:"not null;uniqueIndex"`
	Password string `json:"-" validate:"required,min=6" gorm:"not null"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user" gorm:"default:user"`
}

func (user *User) IsAdmin() bool {
	return user.Role == AdminUserRole
}

// CreateUser hashes the password and fills in the defaults: name from the
// email's local part, role 'user'.
func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	user.Email = strings.ToLower(user.Email)
	if user.Name == "" {
		user.Name = strings.Split(user.Email, "@")[0]
	}
	if user.Role == "" {
		user.Role = BasicUserRole
	}

	return db.Create(user).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserForLogin loads the full record, password hash included.
func FindUserForLogin(email string) (*User, error) {
	user := User{}
	err := db.First(&user, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func AllUsers() ([]User, error) {
	users := []User{}
	err := db.Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// DeleteUser removes a user outright. Returns gorm.ErrRecordNotFound
// when no such user exists.
func DeleteUser(id interface{}) error {
	result := db.Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UserExists is the duplicate pre-check run before insert.
func UserExists(email string) (bool, error) {
	err := db.First(&User{}, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
