package loader

import "strings"

// CleanCode normalizes escape sequences that occur outside string literals,
// so source pasted from a shell or web form with mangled newlines still
// loads correctly. Grounded on
// _examples/original_source/ide/services/code_processor.py's clean_code:
// backtick-n (PowerShell's `` `n ``) and literal `\n`/`\t` outside a string
// are rewritten to real newline/tab characters; escaped quotes are left
// untouched so the HPL scanner's own string-escape handling still applies
// inside string literals. Supplemented feature per SPEC_FULL.md (not in
// spec.md proper, since spec.md's scope stops at the document loader's
// preprocessing pass, but the original's `code_processor.py` runs this step
// immediately before it).
func CleanCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	inString := false

	for i := 0; i < len(code); {
		c := code[i]

		if c == '"' {
			if i > 0 && code[i-1] == '\\' {
				b.WriteByte(c)
				i++
				continue
			}
			inString = !inString
			b.WriteByte(c)
			i++
			continue
		}

		if inString {
			b.WriteByte(c)
			i++
			continue
		}

		switch {
		case c == '`' && i+1 < len(code) && code[i+1] == 'n':
			b.WriteByte('\n')
			i += 2
		case c == '\\' && i+1 < len(code) && code[i+1] == 'n':
			b.WriteByte('\n')
			i += 2
		case c == '\\' && i+1 < len(code) && code[i+1] == 't':
			b.WriteByte('\t')
			i += 2
		case c == '\\' && i+1 < len(code) && code[i+1] == '"':
			b.WriteByte(c)
			b.WriteByte(code[i+1])
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
