package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hpl"
)

// Debug executes each file inside the sandbox with debug instrumentation
// attached and prints its output followed by a summary of the execution
// trace, using the same exit-code mapping as Run.
func (c *Cmd) Debug(ctx context.Context, stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			printError(stdio, err)
			return &cmdError{msg: err.Error(), code: 1}
		}

		res, err := hpl.Debug(string(src), c.options(path))
		if err != nil {
			printError(stdio, err)
			return &cmdError{msg: err.Error(), code: 1}
		}

		fmt.Fprint(stdio.Stdout, res.Output)
		if res.Debug != nil {
			fmt.Fprintf(stdio.Stdout, "--- trace: %d events, %d lines covered ---\n",
				len(res.Debug.ExecutionTrace), len(res.Debug.Coverage))
			for _, ev := range res.Debug.ExecutionTrace {
				fmt.Fprintf(stdio.Stdout, "%d: %s %v\n", ev.Line, ev.Type, ev.Details)
			}
		}
		if !res.Success {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", res.ErrorType, res.Error)
			return &cmdError{msg: res.Error, code: exitCodeFor(res.ErrorType)}
		}
	}
	return nil
}
