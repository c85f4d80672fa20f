// Copyright (C) 2017 ScyllaDB

package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.OutOrStderr(), "\nSTARTUP ERROR: %s\n\n", err)

		// Give systemd a moment to collect the last log messages of
		// a failed process, see https://github.com/systemd/systemd/issues/2913.
		time.Sleep(1100 * time.Millisecond)

		os.Exit(1)
	}

	os.Exit(0)
}
