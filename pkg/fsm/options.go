package fsm

import "fmt"

// MachineOption represents options to initially set up a machine
type MachineOption func(m *Machine) error

// WithTransition allows the addition of a single edge on the transition graph.  To add multiple
// edges at once, try WithTransitions.
func WithTransition(t Transition) MachineOption {
	return func(m *Machine) error {
		m.allowable[t.From] = append(m.allowable[t.From], t.To)
		return nil
	}
}

// WithTransitions will allow the addition of multiple transitions using the T(from, to...) short
// function.  For example, you can call `NewMachine(Idle, WithTransitions(T(Idle, Running), T(Running, Done)))`
func WithTransitions(transitions ...[]Transition) MachineOption {
	return func(m *Machine) error {
		for _, t := range flatten(transitions) {
			m.allowable[t.From] = append(m.allowable[t.From], t.To)
		}
		return nil
	}
}

// WithTerminal declares states that can never be left except by Reset.  Declaring a terminal
// state that already has outgoing edges is an error.
func WithTerminal(states ...State) MachineOption {
	return func(m *Machine) error {
		for _, s := range states {
			if len(m.allowable[s]) > 0 {
				return fmt.Errorf("terminal state %s has outgoing transitions", s)
			}
			m.terminal[s] = true
		}
		return nil
	}
}
