package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata of the cpg CLI, overridable via -ldflags "-X".
var (
	// Version is the semantic version, optionally with a pre-release suffix.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders Version with one color per major, minor and patch part.
// Colors follow color.NoColor, so redirected output stays plain.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", len(partColors))
	for i, p := range parts {
		parts[i] = partColors[i].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Details lists the optional build metadata that is set, as "key value"
// lines.
func Details() []string {
	var out []string
	if GitCommit != "" {
		out = append(out, "commit "+GitCommit)
	}
	if BuildDate != "" {
		out = append(out, "built  "+BuildDate)
	}
	return out
}
