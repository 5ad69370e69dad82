package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusRejected))
	assert.False(t, StatusWaiting.CanTransitionTo(StatusWaiting))

	for _, terminal := range []Status{StatusApproved, StatusRejected} {
		assert.True(t, terminal.IsTerminal())
		for _, target := range []Status{StatusWaiting, StatusApproved, StatusRejected} {
			assert.False(t, terminal.CanTransitionTo(target), "%s -> %s", terminal, target)
		}
	}

	assert.False(t, StatusWaiting.IsTerminal())
	assert.False(t, Status("CANCELED").IsValid())
	assert.True(t, Status("CANCELED").IsTerminal())
}

func TestDecision(t *testing.T) {
	assert.Equal(t, StatusApproved, decision(true))
	assert.Equal(t, StatusRejected, decision(false))
}

func TestBooking_VisibleTo(t *testing.T) {
	b := &Booking{BookerID: "booker", ItemOwnerID: "owner"}

	assert.True(t, b.VisibleTo("booker"))
	assert.True(t, b.VisibleTo("owner"))
	assert.False(t, b.VisibleTo("stranger"))
}
