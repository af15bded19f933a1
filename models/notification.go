package models

import "time"

// Notification is append-only; only Read changes after creation.
type Notification struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	TargetUserID string    `json:"target_user_id" gorm:"index;not null"`
	Message      string    `json:"message" gorm:"not null"`
	OrderID      string    `json:"order_id"`
	DeliveryID   string    `json:"delivery_id"`
	Read         bool      `json:"read" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
