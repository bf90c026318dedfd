package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

// IsValidRole reports whether r is one of the known roles.
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"column:name;not null"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Role         Role   `json:"role" gorm:"column:role;not null;default:user"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
