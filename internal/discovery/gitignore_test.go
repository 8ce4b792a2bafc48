package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseIgnoreLine_BlankAndComment(t *testing.T) {
	if _, ok := parseIgnoreLine(""); ok {
		t.Error("expected ok=false for blank line")
	}
	if _, ok := parseIgnoreLine("   \t  "); ok {
		t.Error("expected ok=false for whitespace-only line")
	}
	if _, ok := parseIgnoreLine("# a comment"); ok {
		t.Error("expected ok=false for comment line")
	}
}

func TestParseIgnoreLine_Forms(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantPattern  string
		wantNegated  bool
		wantDirOnly  bool
		wantAnchored bool
	}{
		{"simple", "*.log", "*.log", false, false, false},
		{"negated", "!keep.log", "keep.log", true, false, false},
		{"dir only", "build/", "build", false, true, false},
		{"leading slash anchors", "/config.json", "config.json", false, false, true},
		{"nested path anchors", "src/gen", "src/gen", false, false, true},
		{"doublestar prefix not anchored", "**/node_modules", "**/node_modules", false, false, false},
		{"doublestar with further slash anchors", "**/src/gen", "**/src/gen", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, ok := parseIgnoreLine(tt.line)
			if !ok {
				t.Fatalf("parseIgnoreLine(%q): expected ok=true", tt.line)
			}
			if pat.pattern != tt.wantPattern || pat.negated != tt.wantNegated ||
				pat.dirOnly != tt.wantDirOnly || pat.anchored != tt.wantAnchored {
				t.Errorf("parseIgnoreLine(%q) = %+v", tt.line, pat)
			}
		})
	}
}

func TestIgnoreMatcher_RootGitignore(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n!important.log\n"), 0o644)

	m := newIgnoreMatcher()
	m.loadRoot(dir)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"important.log", false, false},
		{"build", true, true},
		{"build", false, false}, // dirOnly rule doesn't apply to non-dir candidates
		{"src/main.go", false, false},
	}
	for _, c := range cases {
		if got := m.isIgnored(c.path, c.isDir); got != c.want {
			t.Errorf("isIgnored(%q, dir=%v) = %v, want %v", c.path, c.isDir, got, c.want)
		}
	}
}

func TestIgnoreMatcher_NestedGitignoreScopedToSubtree(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "pkg"), 0o755)
	os.WriteFile(filepath.Join(dir, "pkg", ".gitignore"), []byte("local.tmp\n"), 0o644)

	m := newIgnoreMatcher()
	m.loadRoot(dir)
	m.loadDir(dir, "pkg/")

	if !m.isIgnored("pkg/local.tmp", false) {
		t.Error("expected pkg/local.tmp to be ignored")
	}
	if m.isIgnored("local.tmp", false) {
		t.Error("root-level local.tmp should not be ignored by pkg/.gitignore")
	}
}

func TestMatchGlob_DoubleStar(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"**/node_modules", "a/b/node_modules", true},
		{"**/node_modules", "node_modules", true},
		{"src/**/test", "src/a/b/test", true},
		{"src/**/test", "src/test", true},
		{"src/**", "src/a/b", true},
		{"src/**", "other/a", false},
	}
	for _, tt := range tests {
		if got := matchGlob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}
