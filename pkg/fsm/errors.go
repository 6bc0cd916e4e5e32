package fsm

// TransitionNotAllowed is an error type caused by attempting to transition to a state that is
// not allowed by the FSM
type TransitionNotAllowed struct {
	From State
	To   State
}

func (e TransitionNotAllowed) Error() string {
	return "cannot transition from state " + string(e.From) + " to " + string(e.To)
}

// TerminalError is returned when a transition is attempted out of a terminal state.  A terminal
// state can only be left with Reset.
type TerminalError struct {
	State State
}

func (e TerminalError) Error() string {
	return "state machine is in terminal state " + string(e.State)
}
