package dudect

import (
	"io"
	"math"
	"strconv"

	"github.com/go-logfmt/logfmt"
)

// WriteProgress writes one logfmt record describing a verdict estimate, for example
//
//	session=5d0c... state=running round=12 meas=5871 max_t=3.21 max_tau=4.19e-02 needed=1.42e+04 order=1 crop=p50
func WriteProgress(w io.Writer, v Verdict) error {
	return writeRecord(w, fields(v))
}

// WriteVerdict writes the final record of a session, which adds the severity and its summary
func WriteVerdict(w io.Writer, v Verdict) error {
	kv := append(fields(v), "severity", v.Severity.String(), "summary", v.Severity.Summary())
	if !math.IsNaN(v.PValue) {
		kv = append(kv, "p", strconv.FormatFloat(v.PValue, 'e', 2, 64))
	}
	return writeRecord(w, kv)
}

func fields(v Verdict) []interface{} {
	kv := []interface{}{
		"session", v.SessionID,
		"state", string(v.State),
		"round", v.Rounds,
		"meas", v.Samples,
	}
	if !v.Defined {
		return append(kv, "max_t", "undefined")
	}
	return append(kv,
		"max_t", strconv.FormatFloat(v.T, 'f', 2, 64),
		"max_tau", strconv.FormatFloat(v.Tau, 'e', 2, 64),
		"needed", strconv.FormatFloat(v.NeededSamples, 'e', 2, 64),
		"order", v.Cell.Order,
		"crop", v.Cell.Crop.String(),
	)
}

func writeRecord(w io.Writer, kv []interface{}) error {
	e := logfmt.NewEncoder(w)
	if err := e.EncodeKeyvals(kv...); err != nil {
		return err
	}
	return e.EndRecord()
}
