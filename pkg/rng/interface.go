// Package rng holds the seeded, non-cryptographic random sources used to schedule classes,
// generate random input blocks and simulate timing distributions.
package rng

// RNG is a random number generator
type RNG interface {
	Rand() float64
}
