package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit, origTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = origVersion, origCommit, origTime })

	tests := []struct {
		version, commit, built string
		want                   string
	}{
		{"unknown", "unknown", "unknown", "unknown"},
		{"v1.0.0", "unknown", "unknown", "v1.0.0"},
		{"v1.0.0", "abc123", "2026-01-01", "v1.0.0 (commit abc123, built 2026-01-01)"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildTime = tt.version, tt.commit, tt.built
		if got := String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
