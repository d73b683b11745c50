package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "clinsight",
		Short:   "ClinSight — VTE quality analytics and assistant cost accounting",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newCostCmd(),
		newStatsCmd(),
		newSpendCmd(),
		newVTECmd(),
		newJobsCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
