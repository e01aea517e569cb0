package types

import (
	"regexp"
	"strings"
)

var (
	funcPtrRe = regexp.MustCompile(`^(.+?)\(\s*\*\s*([A-Za-z0-9_$.:<>]*)\s*\)\s*\((.*)\)$`)

	// specifiers carry no identity for this engine.
	specifiers = map[string]bool{
		"const": true, "volatile": true, "static": true, "extern": true,
		"register": true, "auto": true, "final": true, "restrict": true,
		"atomic": true, "_Atomic": true, "mutable": true, "inline": true,
		"constexpr": true, "typename": true,
		"struct": true, "class": true, "union": true, "enum": true,
	}
)

// Parse builds and registers a type from C-family source text such as
// "const unsigned long*", "std::map<int, Foo*>&" or "int (*)(char)".
// Malformed text yields the unknown sentinel.
func (c *Context) Parse(text string) TypeID {
	return c.parse(text, nil)
}

// ParseInScope is Parse with template parameters and typedefs resolved
// against scope.
func (c *Context) ParseInScope(text string, scope LexicalScope) TypeID {
	id := c.parse(text, scope)
	if scope != nil {
		id = c.ResolvePossibleTypedef(id, scope)
	}
	return id
}

func (c *Context) parse(text string, scope LexicalScope) TypeID {
	s := strings.TrimSpace(text)
	if s == "" || s == "?" {
		return c.Unknown()
	}
	if m := funcPtrRe.FindStringSubmatch(s); m != nil {
		ret := c.parse(m[1], scope)
		var params []TypeID
		for _, p := range splitOuter(m[3], ",") {
			if p == "void" {
				continue
			}
			params = append(params, c.parse(p, scope))
		}
		return c.FunctionPointer(ret, params...)
	}

	var base, suffixes []string
	for _, tok := range splitOuter(spaceSuffixes(s), " \t\r\n") {
		if specifiers[tok] {
			continue
		}
		switch {
		case tok == "*" || tok == "&" || tok == "&&" || strings.HasPrefix(tok, "["):
			suffixes = append(suffixes, tok)
		case len(suffixes) == 0:
			base = append(base, tok)
		}
	}
	if len(base) == 0 {
		return c.Unknown()
	}

	id := c.parseBase(strings.Join(base, " "), scope)
	for _, sfx := range suffixes {
		switch {
		case sfx == "*":
			id = c.Pointer(id, OriginPointer)
		case sfx[0] == '[':
			id = c.Pointer(id, OriginArray)
		default:
			id = c.Reference(id)
		}
	}
	return id
}

func (c *Context) parseBase(base string, scope LexicalScope) TypeID {
	lt := strings.IndexByte(base, '<')
	if lt < 0 {
		if base == "void" {
			return c.Incomplete()
		}
		if scope != nil {
			if id, ok := c.ResolveInLexicalScope(scope, base); ok {
				return id
			}
		}
		return c.Object(base)
	}
	end := matching(base, lt)
	if end < 0 {
		return c.Unknown()
	}
	var args []TypeID
	for _, a := range splitOuter(base[lt+1:end], ",") {
		args = append(args, c.parse(a, scope))
	}
	return c.Object(strings.TrimSpace(base[:lt]), args...)
}

// spaceSuffixes separates pointer, reference and array declarators that
// are glued to names ("int*" becomes "int *").
func spaceSuffixes(s string) string {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '<' || ch == '(':
			depth++
		case ch == '>' || ch == ')':
			depth--
		}
		if depth == 0 && (ch == '*' || ch == '&' || ch == '[') {
			if ch == '&' && i > 0 && s[i-1] == '&' {
				sb.WriteByte(ch)
				continue
			}
			sb.WriteByte(' ')
			sb.WriteByte(ch)
			if ch == '[' {
				continue
			}
			if !(ch == '&' && i+1 < len(s) && s[i+1] == '&') {
				sb.WriteByte(' ')
			}
			continue
		}
		if depth == 0 && ch == ']' {
			sb.WriteByte(ch)
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}
