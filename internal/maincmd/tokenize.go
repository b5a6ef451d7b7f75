package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hpl/lang/scanner"
	"github.com/mna/hpl/lang/token"
)

// Tokenize runs the scanner phase alone and prints the resulting tokens,
// kept from the teacher's same-named command and adapted to this port's
// indentation-aware function-body scanner (lang/scanner.ScanAll).
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, paths []string) error {
	var failed bool
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}

		toks, vals, err := scanner.ScanAll(path, src)
		for i, tok := range toks {
			val := vals[i]
			fmt.Fprintf(stdio.Stdout, "%s\t%s\t%q\n", val.Pos, tok, val.Raw)
			if tok == token.EOF {
				break
			}
		}
		if err != nil {
			printError(stdio, err)
			failed = true
		}
	}
	if failed {
		return &cmdError{msg: "tokenize failed", code: 2}
	}
	return nil
}
