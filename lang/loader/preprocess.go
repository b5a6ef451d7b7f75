package loader

import (
	"regexp"
	"strings"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/token"
)

// funcLinePattern matches a document line that opens an inline function body
// (spec.md §4.1: "any line matching the pattern `<indent><name>: (<params>)
// => {`"), grounded on
// _examples/original_source/hpl_runtime/parser.py's preprocess_functions
// (the same regex, `^(\s*)(\w+):\s*\(.*\)\s*=>.*\{`).
var funcLinePattern = regexp.MustCompile(`^(\s*)(\w+):\s*\(.*\)\s*=>.*\{`)

// preprocessFunctions rewrites every inline function body in src into a YAML
// literal block scalar (`key: |` followed by indented lines), so the outer
// YAML document parser never tries to interpret the mini-syntax inside a
// function body as YAML. Brace nesting is tracked line by line; EOF reached
// with positive nesting is a SyntaxError("unterminated function body"), per
// spec.md §4.1 (the Python original silently stops instead — the Go port
// makes this failure explicit, since spec.md requires it).
//
// Splitting a function's opening line into a separate "key: |" indicator
// line plus an indented body line adds exactly one output line per
// function (a YAML block scalar indicator must be alone on its line, so
// the indicator and the original line's own content cannot share a line).
// preprocessFunctions therefore also returns lineMap, where lineMap[k] is
// the 1-based original-source line number that preprocessed output line
// k+1 was derived from, letting callers translate a gopkg.in/yaml.v3
// yaml.Node position (which refers to the preprocessed text) back to the
// original file.
func preprocessFunctions(filename string, src string) (string, []int, error) {
	lines := strings.Split(src, "\n")
	var result []string
	var lineMap []int

	for i := 0; i < len(lines); {
		line := lines[i]
		m := funcLinePattern.FindStringSubmatch(line)
		if m == nil {
			result = append(result, line)
			lineMap = append(lineMap, i+1)
			i++
			continue
		}

		indent := m[1]
		startLine := i
		funcLines := []string{line}
		braceCount := strings.Count(line, "{") - strings.Count(line, "}")
		j := i + 1
		for braceCount > 0 && j < len(lines) {
			next := lines[j]
			funcLines = append(funcLines, next)
			braceCount += strings.Count(next, "{") - strings.Count(next, "}")
			j++
		}
		if braceCount > 0 {
			return "", nil, hplerror.New(hplerror.SyntaxError, "UNTERMINATED_FUNCTION_BODY",
				"unterminated function body").WithPos(token.Position{Filename: filename, Line: startLine + 1, Column: 1})
		}

		full := strings.Join(funcLines, "\n")
		colon := strings.Index(full, ":")
		keyPart := strings.TrimRight(full[:colon], " \t")
		valuePart := strings.TrimSpace(full[colon+1:])

		result = append(result, keyPart+": |")
		lineMap = append(lineMap, startLine+1)
		for b, vl := range strings.Split(valuePart, "\n") {
			result = append(result, indent+"  "+vl)
			orig := startLine + 1 + b
			if orig > j {
				orig = j // valuePart's trailing trim can drop a would-be blank line; clamp defensively
			}
			lineMap = append(lineMap, orig)
		}
		i = j
	}

	return strings.Join(result, "\n"), lineMap, nil
}
