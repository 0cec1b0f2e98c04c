package main

import (
	"os"

	"dbscale/cmd/dbscale/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Failures are already notified and logged with full context; the
		// non-zero exit is for the invoking scheduler.
		os.Exit(1)
	}
}
