package change

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
)

func writeFile(t *testing.T, path, content string) discovery.File {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return discovery.File{RelPath: filepath.Base(path), AbsPath: path, Size: info.Size(), ModTime: info.ModTime()}
}

func TestClassify_New(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, filepath.Join(dir, "a.go"), "package a\n")

	results := Classify([]discovery.File{f}, map[string]PriorEntry{})
	if len(results) != 1 || results[0].Verdict != New {
		t.Fatalf("got %+v, want New", results)
	}
	if results[0].Hash == "" {
		t.Error("expected a computed hash for a new file")
	}
}

func TestClassify_UnchangedByQuickCheck(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, filepath.Join(dir, "a.go"), "package a\n")
	hash, _ := fsutil.HashFile(f.AbsPath)

	prior := map[string]PriorEntry{
		"a.go": {Hash: hash, MTime: f.ModTime, Size: f.Size},
	}
	results := Classify([]discovery.File{f}, prior)
	if len(results) != 1 || results[0].Verdict != Unchanged {
		t.Fatalf("got %+v, want Unchanged", results)
	}
}

func TestClassify_UnchangedDespiteStatDrift(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, filepath.Join(dir, "a.go"), "package a\n")
	hash, _ := fsutil.HashFile(f.AbsPath)

	prior := map[string]PriorEntry{
		// mtime differs but content (and therefore hash) is identical.
		"a.go": {Hash: hash, MTime: f.ModTime.Add(-time.Hour), Size: f.Size},
	}
	results := Classify([]discovery.File{f}, prior)
	if len(results) != 1 || results[0].Verdict != Unchanged {
		t.Fatalf("got %+v, want Unchanged (content identical despite mtime drift)", results)
	}
}

func TestClassify_Changed(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, filepath.Join(dir, "a.go"), "package a\n")

	prior := map[string]PriorEntry{
		"a.go": {Hash: "sha256:deadbeef", MTime: f.ModTime.Add(-time.Hour), Size: f.Size + 1},
	}
	results := Classify([]discovery.File{f}, prior)
	if len(results) != 1 || results[0].Verdict != Changed {
		t.Fatalf("got %+v, want Changed", results)
	}
}

func TestClassify_Deleted(t *testing.T) {
	prior := map[string]PriorEntry{
		"gone.go": {Hash: "sha256:abc", MTime: time.Now(), Size: 10},
	}
	results := Classify(nil, prior)
	if len(results) != 1 || results[0].Verdict != Deleted || results[0].RelPath != "gone.go" {
		t.Fatalf("got %+v, want single Deleted gone.go", results)
	}
}
