package session

// State is the lifecycle state of one call attempt.
type State string

const (
	// StateIdle is the initial state; no call in progress.
	StateIdle State = "idle"
	// StateDialing is after StartCall, before the simulated connect.
	StateDialing State = "dialing"
	// StateActive is a connected call; the duration counter ticks here and
	// nowhere else.
	StateActive State = "active"
	// StateWrapUp is after-call work following EndCall.
	StateWrapUp State = "wrapup"
)

// validTransitions defines which state transitions are allowed.
// Everything else is a caller bug and is treated as a no-op.
var validTransitions = map[State][]State{
	StateIdle:    {StateDialing},
	StateDialing: {StateActive, StateIdle},
	StateActive:  {StateWrapUp},
	StateWrapUp:  {StateIdle},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
