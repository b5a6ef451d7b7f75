package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hpl"
)

// Validate loads and links each file without running it, printing every
// diagnostic found. Exits with code 2 (spec.md §6's "syntax/import error")
// when any file has at least one diagnostic.
func (c *Cmd) Validate(ctx context.Context, stdio mainer.Stdio, paths []string) error {
	var failed bool
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}

		diags := hpl.Validate(string(src))
		for _, d := range diags {
			fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s: %s\n", path, d.Line, d.Column, d.Severity, d.Message)
		}
		if len(diags) > 0 {
			failed = true
		}
	}
	if failed {
		return &cmdError{msg: "validation failed", code: 2}
	}
	return nil
}
