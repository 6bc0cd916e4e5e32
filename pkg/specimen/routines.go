package specimen

import (
	"crypto/subtle"
	"time"
)

// ConstantTimeCompare compares inputs against secret with crypto/subtle
func ConstantTimeCompare(secret []byte) func([]byte) {
	return func(in []byte) {
		sink = subtle.ConstantTimeCompare(in, secret)
	}
}

// EarlyExitCompare compares inputs against secret and returns at the first mismatch, leaking the
// length of the matching prefix
func EarlyExitCompare(secret []byte) func([]byte) {
	return func(in []byte) {
		sink = 1
		for i := range in {
			if i >= len(secret) || in[i] != secret[i] {
				sink = 0
				return
			}
		}
	}
}

// SleepInput sleeps input[0] microseconds
func SleepInput(in []byte) {
	if len(in) > 0 {
		time.Sleep(time.Duration(in[0]) * time.Microsecond)
	}
}

// SleepConstant returns a routine that always sleeps d
func SleepConstant(d time.Duration) func([]byte) {
	return func([]byte) {
		time.Sleep(d)
	}
}

// sink keeps comparisons from being optimized away
var sink int
