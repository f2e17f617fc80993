package workflows

// StateMachine enforces verification status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewVerificationStateMachine creates the state machine for
// domain_verifications.status. Terminal states have no outgoing edges;
// re-verification always goes through a brand-new request.
func NewVerificationStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":   {"verified", "rejected", "cancelled"},
			"verified":  {},
			"rejected":  {},
			"cancelled": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status accepts no further transitions.
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
