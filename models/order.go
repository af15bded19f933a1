package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAssigned  OrderStatus = "assigned"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
)

// rank orders the statuses along the forward-only lifecycle.
var rank = map[OrderStatus]int{
	StatusPending:   0,
	StatusAssigned:  1,
	StatusPickedUp:  2,
	StatusDelivered: 3,
}

// AtLeast reports whether s is at or past other in the lifecycle.
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	a, ok := rank[s]
	b, ok2 := rank[other]
	return ok && ok2 && a >= b
}

// PaymentMethod is the mobile-money provider the customer pays with.
type PaymentMethod string

const (
	PaymentTelebirr PaymentMethod = "telebirr"
	PaymentMpesa    PaymentMethod = "mpesa"
)

type Order struct {
	ID               string               `json:"id" gorm:"primaryKey;size:36"`
	CustomerUserID   string               `json:"customer_user_id" gorm:"index;not null"`
	RestaurantID     string               `json:"restaurant_id" gorm:"index;not null"`
	FoodItemIDs      []string             `json:"food_item_ids" gorm:"serializer:json"`
	Total            float64              `json:"total"`
	PaymentMethod    PaymentMethod        `json:"payment_method" gorm:"not null"`
	Phone            string               `json:"phone" gorm:"not null"`
	Status           OrderStatus          `json:"status" gorm:"index;not null;default:'pending'"`
	DeliveryPersonID string               `json:"delivery_person_id,omitempty" gorm:"index"`
	StatusHistory    []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// OrderStatusHistory tracks every status change of an order.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"` // profile id that triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Delivery links an order to a delivery person. Reassigning an order
// creates a new record; the old one stays for history.
type Delivery struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID          string    `json:"order_id" gorm:"index"`
	DeliveryPersonID string    `json:"delivery_person_id" gorm:"index;not null"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ShortID is the prefix of an id shown to people in notification text.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
