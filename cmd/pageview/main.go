// Command pageview inspects documents, runs scripted viewer sessions and
// reads the reading journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pageflow/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
