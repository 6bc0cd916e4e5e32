// Command dudect measures built-in routines for timing leakage.
//
//	dudect run compare-leaky --batch-size 1000 --max-rounds 200
//	dudect specimens
//
// It exits 0 when no leakage was detected, 2 when leakage was detected and 1 on any error.
package main

import (
	"errors"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errLeakDetected) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
