package types

import (
	"regexp"
	"strings"

	"cpg/internal/diag"
)

var (
	typedefWordRe = regexp.MustCompile(`\btypedef\b`)
	funcAliasRe   = regexp.MustCompile(`\(?\*([^()]+)\)?\(.*\)`)
)

// HandleTypedef records the aliases declared by a raw C typedef in scope.
// A nil scope keeps the typedefs on the context and warns once.
func (c *Context) HandleTypedef(raw string, scope LexicalScope) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(typedefWordRe.ReplaceAllString(raw, ""), ";", ""))
	switch {
	case strings.HasPrefix(cleaned, "struct") && strings.Contains(cleaned, "}"):
		c.handleStructTypedef(raw, cleaned, scope)
	case containsOuter(cleaned, ','):
		c.handleMultipleAliases(raw, cleaned, scope)
	default:
		parts := splitOuter(cleaned, " \t\r\n")
		if len(parts) < 2 {
			c.warn(diag.TypTypedefNoAlias, "typedef contains no whitespace to split on: "+raw)
			return
		}
		// the last item is always the alias being defined
		target := c.Parse(stripRedundantParens(strings.Join(parts[:len(parts)-1], " ")))
		c.handleSingleAlias(raw, target, parts[len(parts)-1], scope)
	}
}

func (c *Context) handleMultipleAliases(raw, cleaned string, scope LexicalScope) {
	parts := splitOuter(cleaned, ",")
	first := splitOuter(parts[0], " \t\r\n")
	if len(first) < 2 {
		c.warn(diag.TypTypedefNoAlias, "cannot find target type of typedef: "+raw)
		return
	}
	target := c.Parse(strings.Join(first[:len(first)-1], " "))
	parts[0] = first[len(first)-1]
	for _, part := range parts {
		c.handleSingleAlias(raw, target, part, scope)
	}
}

func (c *Context) handleStructTypedef(raw, cleaned string, scope LexicalScope) {
	end := strings.LastIndexByte(cleaned, '}')
	parts := splitOuter(cleaned[end+1:], ",")
	if len(parts) == 0 {
		c.warn(diag.TypTypedefNoAlias, "no alias found for struct typedef: "+raw)
		return
	}
	name := ""
	for _, p := range parts {
		if !strings.ContainsAny(p, "*[") {
			name = p
			break
		}
	}
	if name == "" {
		c.warn(diag.TypStructTypedefName, "could not identify struct name: "+raw)
		return
	}
	target := c.Object(name)
	for _, p := range parts {
		if p != name {
			c.handleSingleAlias(raw, target, p, scope)
		}
	}
}

func (c *Context) handleSingleAlias(raw string, target TypeID, alias string, scope LexicalScope) {
	alias = stripRedundantParens(alias)
	name := c.aliasName(alias)
	if name == "" {
		return
	}
	td := Typedef{
		Alias:  c.Object(name),
		Target: c.targetType(target, alias),
		Code:   raw,
	}
	if scope == nil {
		c.warnOnce(diag.TypNoLexicalScope, "no lexical scope available, typedefs are kept globally")
		c.typedefs = append(c.typedefs, td)
		return
	}
	scope.AddTypedef(td)
}

// targetType wraps target according to the declarator shape of alias.
func (c *Context) targetType(target TypeID, alias string) TypeID {
	switch {
	case strings.Contains(alias, "(") && strings.Contains(alias, "*"):
		return c.Parse(c.reg.Name(target) + " " + alias)
	case strings.HasSuffix(alias, "]"):
		return c.Pointer(target, OriginArray)
	case strings.Contains(alias, "*"):
		for range strings.Count(alias, "*") {
			target = c.Pointer(target, OriginPointer)
		}
		return target
	default:
		return target
	}
}

func (c *Context) aliasName(alias string) string {
	if strings.Contains(alias, "(") && strings.Contains(alias, "*") {
		if m := funcAliasRe.FindStringSubmatch(alias); m != nil {
			return strings.TrimSpace(m[1])
		}
		c.warn(diag.TypFunctionPtrAlias, "could not find alias name in function pointer typedef: "+alias)
		return strings.TrimSpace(alias)
	}
	if i := strings.IndexByte(alias, '['); i >= 0 {
		alias = alias[:i]
	}
	return strings.TrimSpace(strings.ReplaceAll(alias, "*", ""))
}

// ResolvePossibleTypedef substitutes the target of a visible typedef for the
// root of id, keeping the wrapping of id.
func (c *Context) ResolvePossibleTypedef(id TypeID, scope LexicalScope) TypeID {
	root := c.reg.Root(id)
	for s := scope; s != nil; s = s.ParentScope() {
		for _, td := range s.Typedefs() {
			if c.reg.Root(td.Alias) == root {
				return c.ReplaceRoot(id, td.Target)
			}
		}
	}
	for _, td := range c.typedefs {
		if c.reg.Root(td.Alias) == root {
			return c.ReplaceRoot(id, td.Target)
		}
	}
	if scope == nil && len(c.typedefs) == 0 {
		c.warnOnce(diag.TypNoLexicalScope, "no lexical scope available, typedef resolution skipped")
	}
	return id
}

// Typedefs returns typedefs recorded without a lexical scope.
func (c *Context) Typedefs() []Typedef {
	return c.typedefs
}
