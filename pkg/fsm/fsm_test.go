package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	t1 := Transition{
		From: State("idle"),
		To:   State("running"),
	}
	t1_2 := []Transition{t1, t1}
	var tt = []struct {
		in  [][]Transition
		out []Transition
	}{
		{in: [][]Transition{t1_2, t1_2}, out: []Transition{t1, t1, t1, t1}},
		{in: nil, out: nil},
	}

	for _, case1 := range tt {
		out := flatten(case1.in)
		assert.Equal(t, case1.out, out, "should flatten nested transition statements")
	}
}

func TestContains(t *testing.T) {
	var m = map[State][]State{
		State("running"): {State("converged"), State("aborted")},
		State("idle"):    {"running"},
	}
	var tt = []struct {
		from   State
		to     State
		expect bool
	}{
		{from: State("running"), to: State("converged"), expect: true},
		{from: State("running"), to: State("aborted"), expect: true},
		{from: State("running"), to: State(""), expect: false},
		{from: State("idle"), to: State("running"), expect: true},
		{from: State("notexist"), to: State("running"), expect: false},
		{from: State(""), to: State(""), expect: false},
	}
	for _, t1 := range tt {
		out := contains(t1.to, m[t1.from])
		assert.Equal(t, t1.expect, out, "should properly find allowable transitions")
	}
}

func TestMachineCreation(t *testing.T) {
	var expect = map[State][]State{
		State("idle"):    {State("running")},
		State("running"): {State("converged"), State("exhausted")},
	}
	m, err := NewMachine(State("idle"), WithTransition(Transition{State("idle"), State("running")}),
		WithTransitions(T(State("running"), State("converged"), State("exhausted"))))
	assert.NoError(t, err)
	assert.Equal(t, expect, m.allowable)
}

func TestMachine(t *testing.T) {
	m, err := NewMachine(State("idle"), WithTransitions(
		T(State("idle"), State("running")),
		T(State("running"), State("aborted"), State("converged")),
	))
	require.NoError(t, err)
	assert.Equal(t, State("idle"), m.current)
	assert.Equal(t, State("idle"), m.initial)
	assert.True(t, m.Allowable(m.State(), State("running")))
	assert.False(t, m.Allowable(m.State(), State("converged")))
	assert.NoError(t, m.Transition(State("running")))

	err = m.Transition(State("idle"))
	assert.Equal(t, TransitionNotAllowed{From: "running", To: "idle"}, err)
	assert.Equal(t, State("running"), m.current)
	assert.NoError(t, m.Transition("converged"))
}

func TestMachineTerminal(t *testing.T) {
	m, err := NewMachine(State("idle"),
		WithTransitions(
			T(State("idle"), State("running")),
			T(State("running"), State("aborted"), State("converged")),
		),
		WithTerminal(State("aborted"), State("converged")),
	)
	require.NoError(t, err)
	assert.False(t, m.Done())
	require.NoError(t, m.Transition(State("running")))
	require.NoError(t, m.Transition(State("aborted")))
	assert.True(t, m.Done())

	// no way out of a terminal state, even toward another terminal state
	err = m.Transition(State("converged"))
	assert.Equal(t, TerminalError{State: "aborted"}, err)
	assert.Equal(t, State("aborted"), m.State())

	m.Reset()
	assert.Equal(t, State("idle"), m.State())
	assert.False(t, m.Done())
}

func TestTerminalWithEdges(t *testing.T) {
	_, err := NewMachine(State("idle"),
		WithTransitions(T(State("idle"), State("running"))),
		WithTerminal(State("idle")),
	)
	assert.Error(t, err)
}
