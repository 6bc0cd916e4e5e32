// Package fsm implements the finite state machine that guards the lifecycle of a measurement session
package fsm

// State represents a possible transition state for the FSM
type State string

// Machine is a basic finite state machine.  States declared with WithTerminal are terminal.
type Machine struct {
	current   State
	initial   State
	allowable map[State][]State
	terminal  map[State]bool
}

// NewMachine returns a new basic Machine with configured options.  If you do not utilize any
// options, the machine will not have any configured transitions.
func NewMachine(initial State, opts ...MachineOption) (*Machine, error) {
	machine := &Machine{
		current:   initial,
		initial:   initial,
		allowable: map[State][]State{},
		terminal:  map[State]bool{},
	}
	for _, opt := range opts {
		if err := opt(machine); err != nil {
			return nil, err
		}
	}
	return machine, nil
}

// State returns the current state of the Machine
func (m *Machine) State() State {
	return m.current
}

// Allowable checks whether a transition between two states is allowable
func (m *Machine) Allowable(from, to State) bool {
	return contains(to, m.allowable[from])
}

// Done reports whether the machine is currently in a terminal state
func (m *Machine) Done() bool {
	return m.terminal[m.current]
}

// Transition will change the current state of the machine if it is allowable.  A failed transition
// leaves the current state untouched.
func (m *Machine) Transition(to State) error {
	if m.terminal[m.current] {
		return TerminalError{State: m.current}
	}
	if !m.Allowable(m.current, to) {
		return TransitionNotAllowed{From: m.current, To: to}
	}
	m.current = to
	return nil
}

// Reset returns the machine to its initial state
func (m *Machine) Reset() {
	m.current = m.initial
}

func contains(s State, all []State) bool {
	for _, a := range all {
		if s == a {
			return true
		}
	}
	return false
}
