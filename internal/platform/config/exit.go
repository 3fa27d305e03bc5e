package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr under the lodestar
// prefix and exits with code 1. It provides a consistent fatal-exit pattern
// for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lodestar: "+format+"\n", args...)
	os.Exit(1)
}
