package workflow

import (
	"fmt"
	"strings"
)

// MixedRestaurantError means an order's items come from more than one
// restaurant.
type MixedRestaurantError struct {
	FoodItemID string
	Expected   string
	Actual     string
}

func (e *MixedRestaurantError) Error() string {
	return fmt.Sprintf("food item %s belongs to restaurant %s, order is for restaurant %s", e.FoodItemID, e.Actual, e.Expected)
}

// AssignmentError means an order cannot be assigned to a delivery person.
type AssignmentError struct {
	OrderID string
	Reason  string
	Err     error
}

func (e *AssignmentError) Error() string {
	msg := fmt.Sprintf("failed to assign delivery for order %s: %s", e.OrderID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AssignmentError) Unwrap() error { return e.Err }

// AcceptError means a delivery step was attempted on an inconsistent
// delivery/order pair, or on an order in the wrong status.
type AcceptError struct {
	Step       string // "accept" or "complete"
	DeliveryID string
	OrderID    string
	Reason     string
	Err        error
}

func (e *AcceptError) Error() string {
	msg := fmt.Sprintf("failed to %s delivery %s for order %s: %s", e.Step, e.DeliveryID, e.OrderID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AcceptError) Unwrap() error { return e.Err }

// ValidationError reports malformed order input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid order fields: " + strings.Join(e.Fields, ", ")
}
