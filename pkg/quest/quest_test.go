package quest

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusActive},
		{StatusPending, StatusAbandoned},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusAbandoned},
		{StatusCompleted, StatusApproved},
		{StatusCompleted, StatusActive}, // rejection
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusApproved},
		{StatusActive, StatusApproved},
		{StatusApproved, StatusActive},
		{StatusApproved, StatusAbandoned},
		{StatusAbandoned, StatusActive},
		{StatusCompleted, StatusAbandoned},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestRewardPoints(t *testing.T) {
	tests := []struct {
		reward string
		want   int
	}{
		{"15 PC and a healing potion", 15},
		{"a mysterious amulet", 0},
		{"reward: 100 points", 100},
		{"", 0},
		{"7", 7},
	}
	for _, tc := range tests {
		if got := RewardPoints(tc.reward); got != tc.want {
			t.Errorf("RewardPoints(%q) = %d, want %d", tc.reward, got, tc.want)
		}
	}
}
