// Command salesmetrics computes sales views and aggregates from a CSV file.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/salesmetrics/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "salesmetrics:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
