package dudect

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one session run by RunAll
type Result struct {
	SessionID string
	Verdict   *Verdict
	Err       error
}

// RunAll runs independent sessions concurrently, at most limit at a time (no limit when limit <= 0).
// Sessions share no state, and one session aborting does not stop the others.  Results are returned
// in the order of sessions.
func RunAll(ctx context.Context, limit int, sessions ...*Session) ([]Result, error) {
	seen := make(map[*Session]bool, len(sessions))
	for _, s := range sessions {
		if s == nil {
			return nil, errors.New("nil session")
		}
		if seen[s] {
			return nil, errors.New("session " + s.ID() + " passed more than once")
		}
		seen[s] = true
	}

	results := make([]Result, len(sessions))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, s := range sessions {
		g.Go(func() error {
			v, err := s.Run(ctx)
			results[i] = Result{SessionID: s.ID(), Verdict: v, Err: err}
			// session failures are reported per result
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}
