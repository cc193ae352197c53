package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestBanner(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "snexc 0.1.0-dev"},
		{"1.2.3", "abc123", "", "snexc 1.2.3 (abc123)"},
		{"1.2.3", "abc123", "2026-01-15", "snexc 1.2.3 (abc123, 2026-01-15)"},
	}
	for _, tc := range cases {
		Version, GitCommit, BuildDate = tc.version, tc.commit, tc.date
		if got := Banner(false); got != tc.want {
			t.Fatalf("Banner = %q, want %q", got, tc.want)
		}
	}
}

func TestBannerColourKeepsText(t *testing.T) {
	origNoColor, origVersion := color.NoColor, Version
	t.Cleanup(func() { color.NoColor, Version = origNoColor, origVersion })
	color.NoColor = true

	Version = "2.0.1-rc.1"
	if got := Banner(true); got != "snexc 2.0.1-rc.1" {
		t.Fatalf("Banner = %q", got)
	}
	Version = "weird"
	if got := Banner(true); got != "snexc weird" {
		t.Fatalf("Banner = %q", got)
	}
}
