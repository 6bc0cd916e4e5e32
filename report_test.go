package dudect

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProgress(t *testing.T) {
	tt := []struct {
		name string
		v    Verdict
		exp  string
	}{
		{
			name: "undefined",
			v:    Verdict{SessionID: "s1", State: Running, Rounds: 1, PValue: math.NaN()},
			exp:  "session=s1 state=running round=1 meas=0 max_t=undefined\n",
		},
		{
			name: "defined",
			v: Verdict{SessionID: "s1", State: Running, Defined: true, T: -12.3456, MaxAbsT: 12.3456, Rounds: 4, Samples: 400,
				Tau: 0.61728, NeededSamples: 65.61, Cell: CellRef{Order: 2, Crop: 50}},
			exp: "session=s1 state=running round=4 meas=400 max_t=-12.35 max_tau=6.17e-01 needed=6.56e+01 order=2 crop=p50\n",
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var b bytes.Buffer
			require.NoError(t, WriteProgress(&b, tc.v))
			assert.Equal(t, tc.exp, b.String())
		})
	}
}

func TestWriteVerdict(t *testing.T) {
	var b bytes.Buffer
	v := Verdict{SessionID: "s2", State: Converged, Defined: true, T: 600, MaxAbsT: 600, Rounds: 2, Samples: 100,
		Tau: 60, NeededSamples: 0.0069, Cell: CellRef{Order: 1, Crop: NoCrop}, Severity: SeverityDefinite, PValue: 0}
	require.NoError(t, WriteVerdict(&b, v))
	assert.Equal(t, "session=s2 state=converged round=2 meas=100 max_t=600.00 max_tau=6.00e+01 needed=6.90e-03 order=1 crop=none "+
		"severity=definite summary=\"Definitely not constant time.\" p=0.00e+00\n", b.String())
}

func TestSeverity(t *testing.T) {
	cfg := DefaultConfig()
	tt := []struct {
		name    string
		absT    float64
		defined bool
		exp     Severity
	}{
		{name: "undefined", absT: 100, defined: false, exp: SeverityNone},
		{name: "at threshold", absT: 4.5, defined: true, exp: SeverityNone},
		{name: "above threshold", absT: 4.6, defined: true, exp: SeverityProbable},
		{name: "at overwhelming", absT: 500, defined: true, exp: SeverityProbable},
		{name: "overwhelming", absT: 501, defined: true, exp: SeverityDefinite},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, severity(tc.absT, tc.defined, cfg))
		})
	}
}

func TestEffect(t *testing.T) {
	tau, needed := effect(10, 100)
	assert.Equal(t, 1.0, tau)
	assert.Equal(t, 25.0, needed)

	_, needed = effect(0, 100)
	assert.True(t, math.IsInf(needed, 1))
}
