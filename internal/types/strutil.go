package types

import "strings"

func isOpen(r byte) bool  { return r == '(' || r == '<' || r == '[' }
func isClose(r byte) bool { return r == ')' || r == '>' || r == ']' }

// splitOuter splits s on any byte of seps that is not nested inside
// parentheses, angle brackets or square brackets. Parts are trimmed and
// empty parts dropped.
func splitOuter(s, seps string) []string {
	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		if part := strings.TrimSpace(s[start:end]); part != "" {
			out = append(out, part)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isOpen(c):
			depth++
		case isClose(c):
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.IndexByte(seps, c) >= 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(s))
	return out
}

// containsOuter reports whether marker occurs outside any parentheses.
func containsOuter(s string, marker byte) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case marker:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// stripRedundantParens drops parentheses enclosing the whole string and
// doubled pairs such as ((x)). Unbalanced input is returned unchanged.
func stripRedundantParens(s string) string {
	drop := make([]bool, len(s))
	var stack []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				return s
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			whole := open == 0 && i == len(s)-1
			doubled := open > 0 && i+1 < len(s) && s[open-1] == '(' && s[i+1] == ')'
			if whole || doubled {
				drop[open], drop[i] = true, true
			}
		}
	}
	if len(stack) != 0 {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if !drop[i] {
			sb.WriteByte(s[i])
		}
	}
	return strings.TrimSpace(sb.String())
}

// matching returns the index of the bracket closing s[open], or -1.
func matching(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch {
		case isOpen(s[i]):
			depth++
		case isClose(s[i]):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
