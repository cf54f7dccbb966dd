package models

import "testing"

// TestSessionStatusTerminal verifies terminal state classification.
func TestSessionStatusTerminal(t *testing.T) {
	if SessionInProgress.Terminal() {
		t.Error("in_progress should not be terminal")
	}
	if !SessionCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if !SessionAbandoned.Terminal() {
		t.Error("abandoned should be terminal")
	}
}
