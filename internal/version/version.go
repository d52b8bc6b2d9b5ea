package version

import (
	"encoding/json"
	"strings"

	"github.com/fatih/color"
)

// Version information for the ferrum CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Current returns the build description.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// Pretty renders the version with its components coloured when colored is
// set, followed by commit and date when known.
func (i Info) Pretty(colored bool) string {
	var sb strings.Builder
	sb.WriteString("ferrum ")
	sb.WriteString(colorize(i.Version, colored))
	if i.GitCommit != "" {
		sb.WriteString(" (" + i.GitCommit + ")")
	}
	if i.BuildDate != "" {
		sb.WriteString(" built " + i.BuildDate)
	}
	return sb.String()
}

// JSON renders the build description as a single JSON object.
func (i Info) JSON() ([]byte, error) { return json.Marshal(i) }

func colorize(v string, colored bool) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	paint := []*color.Color{versionMajorColor, versionMinorColor, versionPatchColor}
	for i, p := range parts {
		c := *paint[i]
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(p)
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
