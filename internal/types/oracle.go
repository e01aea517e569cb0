package types

// AssignabilityOracle answers "is sub assignable to super" for library
// types the graph has no declarations for.
type AssignabilityOracle interface {
	Assignable(super, sub string) bool
}

// Hierarchy is a name-based oracle: each entry lists direct supertypes.
type Hierarchy map[string][]string

// Assignable walks the supertypes of sub looking for super.
func (h Hierarchy) Assignable(super, sub string) bool {
	seen := map[string]bool{}
	stack := []string{sub}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == super {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, h[n]...)
	}
	return false
}

// DefaultOracle covers the JDK and C++ standard library types that front
// ends commonly reference without declaring them.
func DefaultOracle() Hierarchy {
	const object = "java.lang.Object"
	h := Hierarchy{
		"java.lang.String":                   {object, "java.lang.CharSequence", "java.lang.Comparable"},
		"java.lang.StringBuilder":            {object, "java.lang.CharSequence"},
		"java.lang.CharSequence":             {object},
		"java.lang.Comparable":               {object},
		"java.lang.Number":                   {object},
		"java.lang.Integer":                  {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Long":                     {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Short":                    {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Byte":                     {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Double":                   {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Float":                    {"java.lang.Number", "java.lang.Comparable"},
		"java.lang.Boolean":                  {object, "java.lang.Comparable"},
		"java.lang.Character":                {object, "java.lang.Comparable"},
		"java.lang.Throwable":                {object},
		"java.lang.Exception":                {"java.lang.Throwable"},
		"java.lang.Error":                    {"java.lang.Throwable"},
		"java.lang.RuntimeException":         {"java.lang.Exception"},
		"java.lang.IllegalArgumentException": {"java.lang.RuntimeException"},
		"java.lang.IllegalStateException":    {"java.lang.RuntimeException"},
		"java.lang.NullPointerException":     {"java.lang.RuntimeException"},

		"java.io.IOException":  {"java.lang.Exception"},
		"java.lang.Iterable":   {object},
		"java.util.Collection": {"java.lang.Iterable"},
		"java.util.List":       {"java.util.Collection"},
		"java.util.Set":        {"java.util.Collection"},
		"java.util.Queue":      {"java.util.Collection"},
		"java.util.Map":        {object},
		"java.util.ArrayList":  {"java.util.List"},
		"java.util.LinkedList": {"java.util.List", "java.util.Queue"},
		"java.util.HashSet":    {"java.util.Set"},
		"java.util.TreeSet":    {"java.util.Set"},
		"java.util.HashMap":    {"java.util.Map"},
		"java.util.TreeMap":    {"java.util.Map"},

		"std::exception":        nil,
		"std::logic_error":      {"std::exception"},
		"std::runtime_error":    {"std::exception"},
		"std::invalid_argument": {"std::logic_error"},
		"std::out_of_range":     {"std::logic_error"},
		"std::overflow_error":   {"std::runtime_error"},
		"std::bad_alloc":        {"std::exception"},
		"std::istream":          {"std::ios"},
		"std::ostream":          {"std::ios"},
		"std::iostream":         {"std::istream", "std::ostream"},
		"std::ifstream":         {"std::istream"},
		"std::ofstream":         {"std::ostream"},
		"std::fstream":          {"std::iostream"},
	}
	return h
}
