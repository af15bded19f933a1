package models

import "time"

// DefaultCategory and DefaultDescription fill food items that were stored
// without them.
const (
	DefaultCategory    = "unknown"
	DefaultDescription = "No description available"
)

// Restaurant groups the food items and orders of exactly one hotel manager.
type Restaurant struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	OwnerUserID string     `json:"owner_user_id" gorm:"uniqueIndex;not null"`
	Name        string     `json:"name" gorm:"not null"`
	FoodItems   []FoodItem `json:"food_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type FoodItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Price        float64   `json:"price" gorm:"not null"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	Available    *bool     `json:"available" gorm:"default:true"`
	Rating       float64   `json:"rating" gorm:"default:0"`
	RestaurantID string    `json:"restaurant_id" gorm:"index"`
	OwnerUserIDs []string  `json:"owner_user_ids" gorm:"serializer:json"`
	PostDate     time.Time `json:"post_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAvailable treats a missing availability flag as available.
func (f *FoodItem) IsAvailable() bool {
	return f.Available == nil || *f.Available
}

// Bool returns a pointer to b, for optional flags such as FoodItem.Available.
func Bool(b bool) *bool {
	return &b
}
