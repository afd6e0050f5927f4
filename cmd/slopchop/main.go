package main

import (
	"errors"
	"os"
)

// errChecksFailed maps to exit code 2: the analyzer emitted violations or
// an external check command returned nonzero.
var errChecksFailed = errors.New("checks failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errChecksFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
