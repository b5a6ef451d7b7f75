package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hpl"
)

// Run executes each file inside the sandbox and prints its captured output,
// mapping the result onto the exit codes spec.md §6 names: 0 success, 1
// runtime error, 2 syntax/import error, 124 timeout.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			printError(stdio, err)
			return &cmdError{msg: err.Error(), code: 1}
		}

		res, err := hpl.Execute(string(src), c.options(path))
		if err != nil {
			printError(stdio, err)
			return &cmdError{msg: err.Error(), code: 1}
		}

		fmt.Fprint(stdio.Stdout, res.Output)
		if !res.Success {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", res.ErrorType, res.Error)
			return &cmdError{msg: res.Error, code: exitCodeFor(res.ErrorType)}
		}
	}
	return nil
}

func (c *Cmd) options(path string) hpl.Options {
	return hpl.Options{
		FilePath:   path,
		CallTarget: c.Call,
		CallArgs:   c.Arg,
		Input:      c.In,
		Limits: hpl.Limits{
			MemoryMB:         c.MemoryMB,
			CPUSeconds:       c.CPUSeconds,
			WallClockSeconds: c.WallSeconds,
		},
	}
}

func exitCodeFor(errorType string) int {
	switch errorType {
	case "TimeoutError":
		return 124
	case "SyntaxError", "ImportError":
		return 2
	default:
		return 1
	}
}
