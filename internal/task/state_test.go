package task

import "testing"

func TestParse(t *testing.T) {
	s, err := Parse("VERIFYING")
	if err != nil {
		t.Fatalf("parse VERIFYING: %v", err)
	}
	if s != StateVerifying {
		t.Errorf("got %q", s)
	}

	if _, err := Parse("verifying"); err == nil {
		t.Error("expected error for lowercase state")
	}
	if _, err := Parse(""); err == nil {
		t.Error("expected error for empty state")
	}
	if _, err := Parse("DONE"); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range AllStates {
		want := s == StateCompleted || s == StateRollback
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StatePlanning, StateCoding, true},
		{StateCoding, StateVerifying, true},
		{StateVerifying, StateCompleted, true},
		{StateVerifying, StateCoding, true},
		{StateFailedRetry, StatePlanning, true},
		{StateRollback, StatePlanning, true},
		{StateCompleted, StateCoding, false},
		{StateCompleted, StatePlanning, false},
		{StateRollback, StateCoding, false},
		{StatePlanning, StateVerifying, false},
		{StateCoding, StateCoding, true}, // self-transitions allowed
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
