// Command tsq loads transition systems and evaluates formulas over them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tsq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
