// Command seedctl is an operator CLI for driving the chart tile cache's
// seed and delete jobs against a running server, with an interactive
// wizard for building the request.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "seedctl",
		Short: "Drive chart-tiles seed and delete jobs",
	}
	root.PersistentFlags().String("server", "http://localhost:3000", "chart-tiles server base URL")

	root.AddCommand(newSeedCommand())
	root.AddCommand(newJobsCommand())
	root.AddCommand(newWizardCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
