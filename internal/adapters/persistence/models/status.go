package models

// Token status values
const (
	TokenStatusPending   = "PENDING"
	TokenStatusServing   = "SERVING"
	TokenStatusCompleted = "COMPLETED"
	TokenStatusCancelled = "CANCELLED"
)

var tokenTransitions = map[string][]string{
	TokenStatusPending: {TokenStatusServing, TokenStatusCancelled},
	TokenStatusServing: {TokenStatusCompleted},
}

// CanTransition reports whether a token may move from one status to another.
// COMPLETED and CANCELLED are terminal.
func CanTransition(from, to string) bool {
	for _, next := range tokenTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status string) bool {
	return len(tokenTransitions[status]) == 0
}
