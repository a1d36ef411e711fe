package main

import (
	"fmt"
	"os"

	"github.com/roach88/formulac/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own diagnostics; the error here only
		// carries the exit code.
		if code := cli.GetExitCode(err); code != cli.ExitSuccess {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(code)
		}
	}
}
