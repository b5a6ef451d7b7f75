// Package grammar holds no Go code of its own: it is a documentation-only
// EBNF rendering of the lang/parser grammar (spec.md §4.2/§4.3), checked
// for well-formedness by TestEBNF the same way
// _examples/mna-nenuphar/lang/grammar verifies its own Lua-derived
// grammar.ebnf against golang.org/x/exp/ebnf. nenuphar's own retrieved
// copy of this package is missing the .ebnf data file it tests, so
// grammar.ebnf here is HPL's own, written directly from lang/parser's
// parseBlock/parseStatement/parseExpression precedence chain rather than
// adapted from a teacher data file that doesn't exist in the corpus.
package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestEBNF(t *testing.T) {
	const filename = "grammar.ebnf"

	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "FunctionBody"); err != nil {
		t.Fatal(err)
	}
}
