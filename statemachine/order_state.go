package statemachine

import (
	"fmt"
	"strings"

	"campusbite/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition. The
// lifecycle is forward-only; there is no cancellation path.
var validTransitions = []Transition{
	// Manager hands the order to a delivery person
	{From: models.StatusPending, To: models.StatusAssigned, Actor: models.RoleHotelManager},
	// Delivery person accepts and picks up
	{From: models.StatusAssigned, To: models.StatusPickedUp, Actor: models.RoleDelivery},
	// Delivery person hands over to the customer
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: models.RoleDelivery},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// InitialStatus is the status every order is created with.
const InitialStatus = models.StatusPending

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
