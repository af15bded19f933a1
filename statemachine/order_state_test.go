package statemachine

import (
	"testing"

	"campusbite/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		actor    models.UserRole
		ok       bool
	}{
		{models.StatusPending, models.StatusAssigned, models.RoleHotelManager, true},
		{models.StatusAssigned, models.StatusPickedUp, models.RoleDelivery, true},
		{models.StatusPickedUp, models.StatusDelivered, models.RoleDelivery, true},
		{models.StatusPending, models.StatusAssigned, models.RoleDelivery, false},
		{models.StatusAssigned, models.StatusPending, models.RoleHotelManager, false},
		{models.StatusDelivered, models.StatusPickedUp, models.RoleDelivery, false},
		{models.StatusPending, models.StatusPickedUp, models.RoleDelivery, false},
		{models.StatusPending, models.StatusAssigned, models.RoleStudent, false},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to, tc.actor)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s by %s", tc.from, tc.to, tc.actor)
		} else {
			assert.Error(t, err, "%s -> %s by %s", tc.from, tc.to, tc.actor)
		}
	}
}

func TestTerminalState(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.False(t, IsTerminal(models.StatusPending))

	err := CanTransition(models.StatusDelivered, models.StatusAssigned, models.RoleHotelManager)
	assert.ErrorContains(t, err, "none (terminal state)")
}

func TestTransitionsOnlyMoveForward(t *testing.T) {
	for _, tr := range GetAllTransitions() {
		assert.True(t, tr.To.AtLeast(tr.From))
		assert.NotEqual(t, tr.From, tr.To)
	}
	assert.Equal(t, []models.OrderStatus{models.StatusAssigned}, ValidTransitionsFrom(InitialStatus))
}
