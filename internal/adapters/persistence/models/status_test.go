package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to serving", TokenStatusPending, TokenStatusServing, true},
		{"pending to cancelled", TokenStatusPending, TokenStatusCancelled, true},
		{"serving to completed", TokenStatusServing, TokenStatusCompleted, true},
		{"pending to completed skips serving", TokenStatusPending, TokenStatusCompleted, false},
		{"serving to cancelled", TokenStatusServing, TokenStatusCancelled, false},
		{"serving to pending", TokenStatusServing, TokenStatusPending, false},
		{"completed is terminal", TokenStatusCompleted, TokenStatusServing, false},
		{"cancelled is terminal", TokenStatusCancelled, TokenStatusPending, false},
		{"self transition rejected", TokenStatusPending, TokenStatusPending, false},
		{"unknown status", "UNKNOWN", TokenStatusServing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if IsTerminalStatus(TokenStatusPending) || IsTerminalStatus(TokenStatusServing) {
		t.Error("active statuses must not be terminal")
	}
	if !IsTerminalStatus(TokenStatusCompleted) || !IsTerminalStatus(TokenStatusCancelled) {
		t.Error("completed and cancelled must be terminal")
	}
}
