package main

import (
	"time"

	"github.com/BTBurke/dudect"
	"github.com/BTBurke/dudect/pkg/rng"
	"github.com/BTBurke/dudect/pkg/specimen"
)

const defaultBlockLen = 16

type builtin struct {
	name  string
	desc  string
	build func(n int, seed int64) (dudect.Specimen, error)
}

var builtins = []builtin{
	{name: "compare-ct", desc: "crypto/subtle comparison against a secret", build: compare(specimen.ConstantTimeCompare)},
	{name: "compare-leaky", desc: "byte loop comparison that returns at the first mismatch", build: compare(specimen.EarlyExitCompare)},
	{name: "sleep", desc: "sleeps 20us regardless of input", build: timed(specimen.SleepConstant(20 * time.Microsecond))},
	{name: "sleep-leaky", desc: "sleeps input[0] microseconds, the fixed input is all zeros", build: timed(specimen.SleepInput)},
	{name: "simulated", desc: "normal(1000, 10) durations, no leak", build: simulated(normal, 0)},
	{name: "simulated-leaky", desc: "normal(1000, 10) durations, random inputs take 5 units longer", build: simulated(normal, 5)},
	{name: "simulated-tail", desc: "log-normal durations with a heavy tail, random inputs take 2% longer", build: simulated(lognormal, 20)},
	{name: "simulated-coarse", desc: "poisson tick counts from a coarse timer, random inputs take 1 tick longer", build: simulated(poisson, 1)},
}

func lookup(name string) (builtin, bool) {
	for _, b := range builtins {
		if b.name == name {
			return b, true
		}
	}
	return builtin{}, false
}

func blockLen(n int) int {
	if n <= 0 {
		return defaultBlockLen
	}
	return n
}

// compare builds a comparison against a random secret, which is also the fixed input
func compare(routine func(secret []byte) func([]byte)) func(int, int64) (dudect.Specimen, error) {
	return func(n int, seed int64) (dudect.Specimen, error) {
		secret := make([]byte, blockLen(n))
		rng.NewSource(seed).Fill(secret)
		return specimen.NewTimed(len(secret), routine(secret), specimen.WithFixed(secret), specimen.WithSeed(seed))
	}
}

func timed(fn func([]byte)) func(int, int64) (dudect.Specimen, error) {
	return func(n int, seed int64) (dudect.Specimen, error) {
		return specimen.NewTimed(blockLen(n), fn, specimen.WithSeed(seed))
	}
}

func normal(seed int64) rng.RNG    { return rng.NewNormalRNG(1000, 10, seed) }
func lognormal(seed int64) rng.RNG { return rng.NewLogNormalRNG(7, 0.3, seed) }
func poisson(seed int64) rng.RNG   { return rng.NewPoissonRNG(20, seed) }

func simulated(dist func(int64) rng.RNG, shift float64) func(int, int64) (dudect.Specimen, error) {
	return func(n int, seed int64) (dudect.Specimen, error) {
		s, err := specimen.NewSimulated(blockLen(n), dist(seed), specimen.WithSeed(seed))
		if err != nil {
			return nil, err
		}
		return s.Shift(shift), nil
	}
}
