package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationTransitions(t *testing.T) {
	sm := NewVerificationStateMachine()

	assert.True(t, sm.CanTransition("pending", "verified"))
	assert.True(t, sm.CanTransition("pending", "rejected"))
	assert.True(t, sm.CanTransition("pending", "cancelled"))

	// Terminal states accept nothing; re-verification needs a new request.
	assert.False(t, sm.CanTransition("verified", "pending"))
	assert.False(t, sm.CanTransition("rejected", "pending"))
	assert.False(t, sm.CanTransition("rejected", "verified"))
	assert.False(t, sm.CanTransition("cancelled", "pending"))

	assert.False(t, sm.CanTransition("bogus", "verified"))
}

func TestIsTerminal(t *testing.T) {
	sm := NewVerificationStateMachine()

	assert.False(t, sm.IsTerminal("pending"))
	assert.True(t, sm.IsTerminal("verified"))
	assert.True(t, sm.IsTerminal("rejected"))
	assert.True(t, sm.IsTerminal("cancelled"))
	assert.False(t, sm.IsTerminal("bogus"))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewVerificationStateMachine()

	assert.ElementsMatch(t, []string{"verified", "rejected", "cancelled"}, sm.GetAllowedTransitions("pending"))
	assert.Empty(t, sm.GetAllowedTransitions("verified"))
	assert.Empty(t, sm.GetAllowedTransitions("bogus"))
}
