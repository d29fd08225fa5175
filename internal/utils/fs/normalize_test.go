package fs_test

import (
	"path/filepath"
	"strings"
	"testing"

	"coursarr/internal/utils/fs"
)

// TestSanitizePathComponent checks unsafe character stripping.
func TestSanitizePathComponent(t *testing.T) {
	cases := map[string]string{
		`Video: Part 1/2`:     "Video Part 12",
		"normal name":         "normal name",
		"trailing dots...":    "trailing dots",
		"  padded  ":          "padded",
		"tabs\tand\x00nulls":  "tabsandnulls",
		`<>:"/\|?*`:           "",
		"Wildcards * and ?  ": "Wildcards  and",
	}
	for in, want := range cases {
		if got := fs.SanitizePathComponent(in); got != want {
			t.Fatalf("SanitizePathComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestTruncateComponent checks rune-safe truncation.
func TestTruncateComponent(t *testing.T) {
	if got := fs.TruncateComponent("short", 40); got != "short" {
		t.Fatalf("short name altered: %q", got)
	}

	long := strings.Repeat("ab", 50)
	got := fs.TruncateComponent(long, 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("truncation exceeded limit: %q", got)
	}

	// Multibyte runes must not be split.
	got = fs.TruncateComponent(strings.Repeat("é", 20), 5)
	if len([]rune(got)) != 5 || !strings.HasPrefix(got, "é") {
		t.Fatalf("multibyte truncation broken: %q", got)
	}

	// Zero limit means no truncation.
	if got := fs.TruncateComponent(long, 0); got != long {
		t.Fatalf("zero limit must not truncate")
	}
}

// TestTruncateFilenamePreserveExt checks the extension survives truncation.
func TestTruncateFilenamePreserveExt(t *testing.T) {
	long := strings.Repeat("x", 100) + ".pdf"
	got := fs.TruncateFilenamePreserveExt(long, 20)
	if filepath.Ext(got) != ".pdf" {
		t.Fatalf("extension lost: %q", got)
	}
	if len([]rune(got)) > 20 {
		t.Fatalf("length limit exceeded: %q", got)
	}

	// Extension longer than the budget falls back to a plain cut.
	got = fs.TruncateFilenamePreserveExt("a."+strings.Repeat("e", 50), 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("pathological extension case exceeded limit: %q", got)
	}
}
