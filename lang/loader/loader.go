// Package loader implements the document loader (spec.md §4.1): it reads a
// source text, cleans and preprocesses it so the outer YAML tree parser
// never has to parse a function body's internals, merges in its includes,
// and builds the lang/ast.Document declaration tree the rest of the
// toolchain links into a lang/machine.Program. Grounded on
// _examples/original_source/hpl_runtime/parser.py's HPLParser.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/parser"
	"github.com/mna/hpl/lang/token"
)

// Config configures include/module search behavior shared by the loader and
// lang/module (SPEC_FULL.md's Open Question resolution #2 unifies the two).
type Config struct {
	// SearchPaths are configured package/include search paths, consulted
	// after the current file's own directory.
	SearchPaths []string
	// ExamplesDir is the standard examples directory, the last-resort
	// include search location (spec.md §4.1).
	ExamplesDir string
	// SandboxRoot, if non-empty, is the directory no include path may
	// resolve outside of; relative paths whose cleaned form escapes it are
	// rejected regardless of where they are found on disk.
	SandboxRoot string
}

// Loader turns HPL source text into a linked ast.Document.
type Loader struct {
	Config Config
}

// New returns a Loader configured by cfg.
func New(cfg Config) *Loader { return &Loader{Config: cfg} }

// LoadFile reads, preprocesses and parses the document at path, resolving
// its includes relative to path's directory.
func (l *Loader) LoadFile(path string) (*ast.Document, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, "", hplerror.New(hplerror.SyntaxError, "READ_ERROR", "%s", err)
	}
	return l.LoadSource(path, filepath.Dir(path), src)
}

// LoadSource parses src as the document named filename, located in
// sourceDir for include-resolution purposes (sourceDir may be "" when the
// source has no on-disk location, e.g. a program submitted directly to
// Execute/Debug — includes are then resolved from SearchPaths/ExamplesDir
// only).
func (l *Loader) LoadSource(filename, sourceDir string, src []byte) (*ast.Document, string, error) {
	cleaned := CleanCode(string(src))
	merged, err := l.loadRaw(filename, sourceDir, cleaned)
	if err != nil {
		return nil, cleaned, err
	}
	doc, err := buildDocument(filename, merged)
	return doc, cleaned, err
}

// rawDoc is the document's parsed-YAML shape, still at the text/line-number
// level (spec.md §4.1's "declaration tree" before linking), kept apart from
// ast.Document so include merging can operate on it directly.
type rawDoc struct {
	Includes []string
	Imports  *yaml.Node
	Classes  map[string]*classNode
	Objects  map[string]scalar
	Main     *scalar
	Call     *scalar
	lineMap  []int
}

// scalar is a preprocessed source fragment plus the position, already
// translated back to the original file via preprocessFunctions' lineMap,
// that its text started at.
type scalar struct {
	Text string
	Pos  token.Position
}

type classNode struct {
	Parent  string
	Methods map[string]scalar
}

// loadRaw parses src into a rawDoc and merges in every file named by its
// `includes:` list, per spec.md §4.1: later includes win by key, and (per
// the Python original this is ported from) an include also overrides a
// same-named class/object already present in the main document.
func (l *Loader) loadRaw(filename, sourceDir, src string) (*rawDoc, error) {
	pre, lineMap, err := preprocessFunctions(filename, src)
	if err != nil {
		return nil, err
	}

	doc, err := parseRawDoc(filename, pre, lineMap)
	if err != nil {
		return nil, err
	}

	for _, inc := range doc.Includes {
		incPath, err := l.resolveInclude(sourceDir, inc)
		if err != nil {
			return nil, err
		}
		incSrc, err := os.ReadFile(incPath)
		if err != nil {
			return nil, hplerror.New(hplerror.SyntaxError, "READ_ERROR", "include %q: %s", inc, err)
		}
		incPre, incLineMap, err := preprocessFunctions(incPath, CleanCode(string(incSrc)))
		if err != nil {
			return nil, err
		}
		incDoc, err := parseRawDoc(incPath, incPre, incLineMap)
		if err != nil {
			return nil, err
		}
		mergeInto(doc, incDoc)
	}

	return doc, nil
}

func mergeInto(main, inc *rawDoc) {
	if len(inc.Classes) > 0 && main.Classes == nil {
		main.Classes = make(map[string]*classNode, len(inc.Classes))
	}
	for name, c := range inc.Classes {
		main.Classes[name] = c
	}
	if len(inc.Objects) > 0 && main.Objects == nil {
		main.Objects = make(map[string]scalar, len(inc.Objects))
	}
	for name, o := range inc.Objects {
		main.Objects[name] = o
	}
}

// resolveInclude resolves an include path per spec.md §4.1's search order:
// the current file's directory, then configured search paths, then the
// standard examples directory. Paths with ".." segments that would resolve
// outside Config.SandboxRoot are rejected.
func (l *Loader) resolveInclude(sourceDir, name string) (string, error) {
	if l.Config.SandboxRoot != "" && pathEscapes(l.Config.SandboxRoot, sourceDir, name) {
		return "", hplerror.New(hplerror.SyntaxError, "UNSAFE_INCLUDE_PATH", "include path %q escapes the sandbox root", name)
	}

	candidates := make([]string, 0, 2+len(l.Config.SearchPaths))
	if sourceDir != "" {
		candidates = append(candidates, filepath.Join(sourceDir, name))
	}
	for _, p := range l.Config.SearchPaths {
		candidates = append(candidates, filepath.Join(p, name))
	}
	if l.Config.ExamplesDir != "" {
		candidates = append(candidates, filepath.Join(l.Config.ExamplesDir, name))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", hplerror.New(hplerror.SyntaxError, "INCLUDE_NOT_FOUND", "include %q not found (searched %d location(s))", name, len(candidates))
}

// pathEscapes reports whether joining root/name (for an empty base) would
// resolve outside root.
func pathEscapes(root, base, name string) bool {
	if !filepath.IsAbs(root) {
		return false // no sandbox root configured in absolute terms, nothing to enforce
	}
	joined := filepath.Join(base, name)
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(root, joined)
	}
	rel, err := filepath.Rel(root, joined)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// parseRawDoc parses one preprocessed document (no include resolution).
// lineMap translates a yaml.Node position (in the preprocessed text) back
// to the corresponding line of the original file, per preprocessFunctions.
func parseRawDoc(filename, src string, lineMap []int) (*rawDoc, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(src), &root); err != nil {
		return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: %s", filename, err)
	}
	if len(root.Content) == 0 {
		return &rawDoc{}, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: document root must be a mapping", filename)
	}

	doc := &rawDoc{}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		val := mapping.Content[i+1]
		switch key.Value {
		case "includes":
			if err := val.Decode(&doc.Includes); err != nil {
				return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: includes: %s", filename, err)
			}
		case "imports":
			doc.Imports = val
		case "classes":
			classes, err := parseClassesNode(filename, val, lineMap)
			if err != nil {
				return nil, err
			}
			doc.Classes = classes
		case "objects":
			objects, err := parseObjectsNode(filename, val, lineMap)
			if err != nil {
				return nil, err
			}
			doc.Objects = objects
		case "main":
			s := scalarOf(filename, val, lineMap)
			doc.Main = &s
		case "call":
			s := scalarOf(filename, val, lineMap)
			doc.Call = &s
		}
	}
	doc.lineMap = lineMap
	return doc, nil
}

func scalarOf(filename string, n *yaml.Node, lineMap []int) scalar {
	line := n.Line
	if line >= 1 && line <= len(lineMap) {
		line = lineMap[line-1]
	}
	return scalar{
		Text: n.Value,
		Pos:  token.Position{Filename: filename, Line: line, Column: n.Column},
	}
}

func parseClassesNode(filename string, n *yaml.Node, lineMap []int) (map[string]*classNode, error) {
	if n.Kind != yaml.MappingNode {
		return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: classes: must be a mapping", filename)
	}
	out := make(map[string]*classNode, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		body := n.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: class %q: must be a mapping", filename, name)
		}
		cls := &classNode{Methods: make(map[string]scalar, len(body.Content)/2)}
		for j := 0; j+1 < len(body.Content); j += 2 {
			mkey := body.Content[j]
			mval := body.Content[j+1]
			if mkey.Value == "parent" {
				cls.Parent = mval.Value
				continue
			}
			cls.Methods[mkey.Value] = scalarOf(filename, mval, lineMap)
		}
		out[name] = cls
	}
	return out, nil
}

func parseObjectsNode(filename string, n *yaml.Node, lineMap []int) (map[string]scalar, error) {
	if n.Kind != yaml.MappingNode {
		return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: objects: must be a mapping", filename)
	}
	out := make(map[string]scalar, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = scalarOf(filename, n.Content[i+1], lineMap)
	}
	return out, nil
}

// buildDocument turns a merged rawDoc into the ast.Document the rest of the
// toolchain consumes, parsing every function-body/expression fragment with
// lang/parser.
func buildDocument(filename string, raw *rawDoc) (*ast.Document, error) {
	doc := &ast.Document{
		Classes: make(map[string]*ast.ClassDecl, len(raw.Classes)),
		Objects: make(map[string]*ast.ObjectDecl, len(raw.Objects)),
	}
	for _, inc := range raw.Includes {
		doc.Includes = append(doc.Includes, &ast.IncludeDecl{Path: inc})
	}

	var errs hplerror.List

	for name, c := range raw.Classes {
		cd := &ast.ClassDecl{Name: name, Parent: c.Parent, Methods: make(map[string]*ast.FunctionBody, len(c.Methods))}
		for mname, body := range c.Methods {
			fb, err := parseFunctionLiteral(filename, body)
			if err != nil {
				errs = append(errs, asList(err)...)
				continue
			}
			cd.Pos = fb.Pos
			cd.Methods[mname] = fb
		}
		doc.Classes[name] = cd
	}

	for name, body := range raw.Objects {
		od, err := parseObjectLiteral(filename, name, body)
		if err != nil {
			errs = append(errs, asList(err)...)
			continue
		}
		doc.Objects[name] = od
	}

	if raw.Main != nil {
		fb, err := parseFunctionLiteral(filename, *raw.Main)
		if err != nil {
			errs = append(errs, asList(err)...)
		} else {
			doc.MainFunc = fb
		}
	}

	if raw.Call != nil {
		cd, err := parseCallLiteral(filename, *raw.Call)
		if err != nil {
			errs = append(errs, asList(err)...)
		} else {
			doc.Call = cd
		}
	}

	if raw.Imports != nil {
		imports, err := parseImportsNode(filename, raw.Imports, raw.lineMap)
		if err != nil {
			errs = append(errs, asList(err)...)
		} else {
			doc.Imports = imports
		}
	}

	if err := errs.Err(); err != nil {
		return doc, err
	}
	if doc.MainFunc == nil && doc.Call == nil {
		return doc, hplerror.New(hplerror.SyntaxError, "NO_ENTRY_POINT",
			"document has neither a main function nor a call directive")
	}
	return doc, nil
}

func asList(err error) hplerror.List {
	switch e := err.(type) {
	case hplerror.List:
		return e
	case *hplerror.Error:
		return hplerror.List{e}
	default:
		return hplerror.List{hplerror.New(hplerror.SyntaxError, "PARSE_ERROR", "%s", err)}
	}
}

func parseImportsNode(filename string, n *yaml.Node, lineMap []int) ([]*ast.ImportDecl, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: imports: must be a list", filename)
	}
	out := make([]*ast.ImportDecl, 0, len(n.Content))
	for _, item := range n.Content {
		line := item.Line
		if line >= 1 && line <= len(lineMap) {
			line = lineMap[line-1]
		}
		pos := token.Position{Filename: filename, Line: line, Column: item.Column}
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, &ast.ImportDecl{Pos: pos, Name: item.Value})
		case yaml.MappingNode:
			if len(item.Content) < 2 {
				return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: imports: malformed entry", filename)
			}
			out = append(out, &ast.ImportDecl{Pos: pos, Name: item.Content[0].Value, Alias: item.Content[1].Value})
		default:
			return nil, hplerror.New(hplerror.SyntaxError, "YAML_ERROR", "%s: imports: entry must be a string or a single-key mapping", filename)
		}
	}
	return out, nil
}

// parseFunctionLiteral extracts the `(params) => { body }` literal's
// parameter list and body text (a literal without braces is rejected), then hands the body off to lang/parser, grounded on
// _examples/original_source/hpl_runtime/parser.py's parse_function (same
// find-paren/find-arrow/find-brace string scan, not a tokenized parse of
// the signature itself).
func parseFunctionLiteral(filename string, s scalar) (*ast.FunctionBody, error) {
	text := strings.TrimSpace(s.Text)
	start := strings.IndexByte(text, '(')
	end := strings.IndexByte(text, ')')
	if start == -1 || end == -1 || end < start {
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_FUNCTION_LITERAL", "malformed function literal: missing parameter list").WithPos(s.Pos)
	}
	paramsStr := text[start+1 : end]
	var params []string
	if strings.TrimSpace(paramsStr) != "" {
		for _, p := range strings.Split(paramsStr, ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}

	arrow := strings.Index(text[end:], "=>")
	if arrow == -1 {
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_FUNCTION_LITERAL", "arrow function syntax error: => not found").WithPos(s.Pos)
	}
	arrowPos := end + arrow

	bodyStart := strings.IndexByte(text[arrowPos:], '{')
	bodyEnd := strings.LastIndexByte(text, '}')
	if bodyStart == -1 || bodyEnd == -1 {
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_FUNCTION_LITERAL", "arrow function syntax error: braces not found").WithPos(s.Pos)
	}
	bodyStart += arrowPos

	padded := padTo(s, text, bodyStart+1, bodyEnd)
	fb, err := parser.ParseFunctionBody(filename, params, []byte(padded))
	if err != nil {
		return nil, err
	}
	fb.Pos = s.Pos
	return fb, nil
}

// padTo builds a source buffer for rawText[bodyOffset:bodyEnd] (the
// brace-delimited body substring, braces excluded), prefixed with enough
// blank lines/spaces that the lang/scanner's line/column counting (which
// always starts fresh at 1:1) reports positions aligned with s.Pos, which
// is already translated to the original document's coordinates.
func padTo(s scalar, rawText string, bodyOffset, bodyEnd int) string {
	consumed := rawText[:bodyOffset]
	extraLines := strings.Count(consumed, "\n")
	lastLineStart := strings.LastIndexByte(consumed, '\n') + 1
	col := s.Pos.Column
	if extraLines == 0 {
		col += len(consumed)
	} else {
		col = len(consumed) - lastLineStart + 1
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("\n", s.Pos.Line-1+extraLines))
	if col > 1 {
		b.WriteString(strings.Repeat(" ", col-1))
	}
	b.WriteString(rawText[bodyOffset:bodyEnd])
	return b.String()
}

// parseObjectLiteral parses a `name: ClassName(arg, arg, …)` entry by
// reusing the expression parser on the whole literal, which parses it as an
// ordinary call expression (spec.md §4.5), grounded on
// _examples/original_source/hpl_runtime/parser.py's parse_objects (there a
// hand-rolled string split; here the same grammar the rest of the parser
// already implements).
func parseObjectLiteral(filename, name string, s scalar) (*ast.ObjectDecl, error) {
	text := strings.TrimSpace(s.Text)
	if !strings.Contains(text, "(") {
		text += "()"
	}
	padded := padScalar(s, text)
	expr, err := parser.ParseExpr(filename, []byte(padded))
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.FunctionCall)
	if !ok {
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_OBJECT_LITERAL", "object %q: expected ClassName(args)", name).WithPos(s.Pos)
	}
	callee, ok := call.Callee.(*ast.Variable)
	if !ok {
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_OBJECT_LITERAL", "object %q: expected a class name", name).WithPos(s.Pos)
	}
	return &ast.ObjectDecl{Pos: s.Pos, Name: name, ClassName: callee.Name, Args: call.Args}, nil
}

// parseCallLiteral parses the `call:` directive: either `name(args)` or
// `receiver.method(args)` (spec.md §4.1).
func parseCallLiteral(filename string, s scalar) (*ast.CallDirective, error) {
	text := strings.TrimSpace(s.Text)
	padded := padScalar(s, text)
	expr, err := parser.ParseExpr(filename, []byte(padded))
	if err != nil {
		return nil, err
	}
	switch n := expr.(type) {
	case *ast.FunctionCall:
		va, ok := n.Callee.(*ast.Variable)
		if !ok {
			return nil, hplerror.New(hplerror.SyntaxError, "BAD_CALL_LITERAL", "call: expected a function or method name").WithPos(s.Pos)
		}
		return &ast.CallDirective{Pos: s.Pos, Target: va.Name, Args: n.Args}, nil
	case *ast.MethodCall:
		va, ok := n.Receiver.(*ast.Variable)
		if !ok {
			return nil, hplerror.New(hplerror.SyntaxError, "BAD_CALL_LITERAL", "call: expected obj.method(args)").WithPos(s.Pos)
		}
		return &ast.CallDirective{
			Pos: s.Pos, Target: fmt.Sprintf("%s.%s", va.Name, n.Method),
			Receiver: va.Name, Method: n.Method, Args: n.Args,
		}, nil
	default:
		return nil, hplerror.New(hplerror.SyntaxError, "BAD_CALL_LITERAL", "call: expected name(args) or obj.method(args)").WithPos(s.Pos)
	}
}

func padScalar(s scalar, text string) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("\n", s.Pos.Line-1))
	if s.Pos.Column > 1 {
		b.WriteString(strings.Repeat(" ", s.Pos.Column-1))
	}
	b.WriteString(text)
	return b.String()
}
