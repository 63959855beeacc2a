package session

import "testing"

func TestStateTransitions(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateDialing, true},
		{StateIdle, StateActive, false},
		{StateIdle, StateWrapUp, false},
		{StateDialing, StateActive, true},
		{StateDialing, StateIdle, true},
		{StateDialing, StateWrapUp, false},
		{StateActive, StateWrapUp, true},
		{StateActive, StateIdle, false},
		{StateActive, StateDialing, false},
		{StateWrapUp, StateIdle, true},
		{StateWrapUp, StateActive, false},
		{StateWrapUp, StateDialing, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
