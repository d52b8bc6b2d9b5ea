package version

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	got := Current().Pretty(false)
	want := "ferrum 1.2.3 (abc123def456) built 2024-01-15T10:30:00Z"
	if got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
}

func TestVersion_Colored(t *testing.T) {
	info := Info{Version: "0.1.0-dev"}
	if got := info.Pretty(false); got != "ferrum 0.1.0-dev" {
		t.Errorf("plain = %q", got)
	}
	if got := info.Pretty(true); !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-dev") {
		t.Errorf("colored = %q", got)
	}
	if got := (Info{Version: "nightly"}).Pretty(true); got != "ferrum nightly" {
		t.Errorf("non-semver = %q", got)
	}
}

func TestVersion_JSON(t *testing.T) {
	data, err := Info{Version: "1.0.0"}.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["version"] != "1.0.0" || len(back) != 1 {
		t.Errorf("decoded = %v", back)
	}
}
