package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleStudent      UserRole = "student"
	RoleHotelManager UserRole = "hotel_manager"
	RoleDelivery     UserRole = "delivery"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleHotelManager, RoleDelivery:
		return true
	}
	return false
}

// Supported profile languages.
const (
	LanguageEnglish = "en"
	LanguageAmharic = "am"
)

// User is the application-level profile. It is distinct from the identity
// service account it points at through AccountID.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AccountID string    `json:"account_id" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"not null"`
	Username  string    `json:"username" gorm:"not null"`
	AvatarURL string    `json:"avatar_url"`
	Role      UserRole  `json:"role" gorm:"index;not null;default:'student'"`
	Language  string    `json:"language" gorm:"default:'en'"`
	IsPublic  bool      `json:"is_public" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
