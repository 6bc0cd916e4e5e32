package dudect

import "github.com/BTBurke/dudect/pkg/fsm"

const (
	// A session starts idle, runs rounds while running and ends in exactly one of the three terminal
	// states.  Terminal states are never left; Reset starts a new experiment.
	Idle      = fsm.State("idle")
	Running   = fsm.State("running")
	Converged = fsm.State("converged")
	Exhausted = fsm.State("exhausted")
	Aborted   = fsm.State("aborted")
)

func newMachine() (*fsm.Machine, error) {
	return fsm.NewMachine(Idle,
		fsm.WithTransitions(
			fsm.T(Idle, Running),
			fsm.T(Running, Converged, Exhausted, Aborted),
		),
		fsm.WithTerminal(Converged, Exhausted, Aborted),
	)
}
