// Command calibrate estimates the false positive rate of the leakage test by Monte Carlo simulation.
// It runs many sessions on simulated specimens without any leak and reports, for each threshold, the
// fraction of sessions whose max |t| exceeded it at any round.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/BTBurke/dudect"
	"github.com/BTBurke/dudect/pkg/rng"
	"github.com/BTBurke/dudect/pkg/specimen"
	"github.com/spf13/pflag"
)

type settings struct {
	sessions   int
	procs      int
	batchSize  int
	maxRounds  int
	dist       string
	thresholds []float64
	out        string
	seed       int64
}

type results struct {
	name string
	val  map[float64]float64
}

func (r *results) record(threshold float64, type1error float64) {
	r.val[threshold] = type1error
}

func newResults(name string) *results {
	return &results{
		name: name,
		val:  make(map[float64]float64),
	}
}

func main() {
	s, err := parseSettings(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	start := time.Now()
	res, err := calibrate(context.Background(), s)
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}
	fmt.Printf("Time Elapsed: %v\n", time.Since(start))

	var b bytes.Buffer
	for _, th := range sortedKeys(res.val) {
		b.WriteString(fmt.Sprintf("%f %f\n", th, res.val[th]))
	}
	fmt.Print(b.String())
	if s.out != "" {
		if err := os.WriteFile(s.out, b.Bytes(), 0644); err != nil {
			log.Fatalf("could not write results: %v", err)
		}
	}
}

func parseSettings(args []string) (settings, error) {
	s := settings{}
	pf := pflag.NewFlagSet("calibrate", pflag.ContinueOnError)
	pf.IntVar(&s.sessions, "sessions", 200, "Number of simulated sessions")
	pf.IntVar(&s.procs, "procs", 4, "Sessions to run in parallel")
	pf.IntVar(&s.batchSize, "batch-size", 100, "Measurements per round")
	pf.IntVar(&s.maxRounds, "max-rounds", 100, "Rounds per session")
	pf.StringVar(&s.dist, "dist", "normal", "Duration distribution: normal, lognormal or poisson")
	pf.Float64SliceVar(&s.thresholds, "thresholds", []float64{3, 4, 4.5, 5, 6}, "Thresholds to evaluate")
	pf.StringVarP(&s.out, "out", "o", "", "Also write results to this file")
	pf.Int64Var(&s.seed, "seed", 1, "Base seed, session i uses seed+i")
	if err := pf.Parse(args); err != nil {
		return s, err
	}
	if s.sessions <= 0 {
		return s, fmt.Errorf("sessions must be positive")
	}
	if _, err := distribution(s.dist, 0); err != nil {
		return s, err
	}
	return s, nil
}

func distribution(name string, seed int64) (rng.RNG, error) {
	switch name {
	case "normal":
		return rng.NewNormalRNG(1000, 10, seed), nil
	case "lognormal":
		return rng.NewLogNormalRNG(7, 0.3, seed), nil
	case "poisson":
		return rng.NewPoissonRNG(20, seed), nil
	default:
		return nil, fmt.Errorf("unknown distribution %q", name)
	}
}

// calibrate runs null sessions that can never converge and records the largest |t| each one reached
func calibrate(ctx context.Context, s settings) (*results, error) {
	sessions := make([]*dudect.Session, 0, s.sessions)
	for i := 0; i < s.sessions; i++ {
		seed := s.seed + int64(i)
		dist, err := distribution(s.dist, seed)
		if err != nil {
			return nil, err
		}
		sp, err := specimen.NewSimulated(8, dist, specimen.WithSeed(seed))
		if err != nil {
			return nil, err
		}
		session, err := dudect.New(sp,
			dudect.BatchSize(s.batchSize),
			dudect.MaxRounds(s.maxRounds),
			dudect.History(s.maxRounds),
			dudect.Threshold(math.MaxFloat64/2),
			dudect.Overwhelming(math.MaxFloat64),
			dudect.Seed(seed),
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	out, err := dudect.RunAll(ctx, s.procs, sessions...)
	if err != nil {
		return nil, err
	}

	peaks := make([]float64, 0, len(out))
	for _, r := range out {
		if r.Err != nil {
			return nil, fmt.Errorf("session %s: %w", r.SessionID, r.Err)
		}
		peaks = append(peaks, r.Verdict.PeakAbsT)
	}

	res := newResults(s.dist)
	for _, th := range s.thresholds {
		exceeded := 0
		for _, p := range peaks {
			if p > th {
				exceeded++
			}
		}
		res.record(th, float64(exceeded)/float64(len(peaks)))
	}
	return res, nil
}

func sortedKeys(m map[float64]float64) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
