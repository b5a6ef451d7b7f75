package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/scanner"
	"github.com/mna/hpl/lang/token"
)

func scanAllOK(t *testing.T, src string) ([]token.Token, []token.Value) {
	t.Helper()
	toks, vals, err := scanner.ScanAll("test.hpl", []byte(src))
	require.NoError(t, err)
	return toks, vals
}

func TestScanSimpleExpression(t *testing.T) {
	toks, vals := scanAllOK(t, "x = 1 + 2")
	require.Equal(t, []token.Token{token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.EOF}, toks)
	assert.Equal(t, int64(1), vals[2].Int)
	assert.Equal(t, int64(2), vals[4].Int)
}

func TestScanFloat(t *testing.T) {
	toks, vals := scanAllOK(t, "y = 3.14")
	require.Equal(t, []token.Token{token.IDENT, token.ASSIGN, token.FLOAT, token.EOF}, toks)
	assert.InDelta(t, 3.14, vals[2].Float, 0.0001)
}

func TestScanString(t *testing.T) {
	toks, vals := scanAllOK(t, `msg = "hello\nworld"`)
	require.Equal(t, []token.Token{token.IDENT, token.ASSIGN, token.STRING, token.EOF}, toks)
	assert.Equal(t, "hello\nworld", vals[2].Str)
}

func TestScanBooleanAndKeywords(t *testing.T) {
	toks, _ := scanAllOK(t, "if true && false")
	require.Equal(t, []token.Token{token.IF, token.BOOLEAN, token.AND, token.BOOLEAN, token.EOF}, toks)
}

func TestScanOperators(t *testing.T) {
	toks, _ := scanAllOK(t, "a++ <= b != c == d => e")
	require.Equal(t, []token.Token{
		token.IDENT, token.INCR, token.LE, token.IDENT, token.NEQ, token.IDENT,
		token.EQL, token.IDENT, token.ARROW, token.IDENT, token.EOF,
	}, toks)
}

func TestScanIndentDedent(t *testing.T) {
	src := "if a\n    b\n    c\nd\n"
	toks, _ := scanAllOK(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT,
		token.INDENT, token.IDENT, token.IDENT,
		token.DEDENT, token.IDENT,
		token.EOF,
	}, toks)
}

func TestScanBlankAndCommentLinesDoNotAffectIndent(t *testing.T) {
	src := "if a\n    b\n\n    # a comment\n    c\nd\n"
	toks, _ := scanAllOK(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT,
		token.INDENT, token.IDENT, token.IDENT,
		token.DEDENT, token.IDENT,
		token.EOF,
	}, toks)
}

func TestScanTabsCountAsFourSpaces(t *testing.T) {
	src := "if a\n\tb\nc\n"
	toks, _ := scanAllOK(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT,
		token.INDENT, token.IDENT,
		token.DEDENT, token.IDENT,
		token.EOF,
	}, toks)
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	_, _, err := scanner.ScanAll("test.hpl", []byte(`x = "unterminated`))
	require.Error(t, err)
}

func TestScanIllegalCharacterReportsError(t *testing.T) {
	_, _, err := scanner.ScanAll("test.hpl", []byte("x = 1 @ 2"))
	require.Error(t, err)
}

func TestScanPositions(t *testing.T) {
	_, vals := scanAllOK(t, "x = 1")
	assert.Equal(t, 1, vals[0].Pos.Line)
	assert.Equal(t, "test.hpl", vals[0].Pos.Filename)
}
