// Command patternmatch is the CLI entrypoint for the pattern-matching
// automaton: compile, validate, run, trace, replay, and test a pattern
// source directory. See internal/cli for the command implementations.
package main

import (
	"fmt"
	"os"

	"github.com/patternmatch/strusmatch/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
