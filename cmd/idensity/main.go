// Command idensity computes propositional idea density for tagged text.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ideadensity/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra; command errors were already
		// written in the selected output format.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
