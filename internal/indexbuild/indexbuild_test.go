package indexbuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/rybkr/arkindex/internal/writer"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func baseConfig(repoRoot string) Config {
	return Config{
		RepoRoot:         repoRoot,
		IncludeGlobs:     []string{"**/*"},
		MaxFileKB:        512,
		MaxFiles:         1000,
		RespectGitignore: true,
	}
}

func readMeta(t *testing.T, arkDir string) writer.MetaDoc {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(arkDir, writer.MetaName))
	if err != nil {
		t.Fatal(err)
	}
	var meta writer.MetaDoc
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatal(err)
	}
	return meta
}

func TestBuild_EmptyRepoProducesEmptyArtifacts(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "README.md"), "# Widget\n\nA small widget library.\n")

	result := Build(context.Background(), baseConfig(dir))
	if !result.Success {
		t.Fatalf("Build failed: %+v", result.Error)
	}

	meta := readMeta(t, filepath.Join(dir, ".ark", "index"))
	if meta.Status != "success" {
		t.Errorf("status = %q, want success", meta.Status)
	}
	if meta.Stats.TotalSymbols != 0 {
		t.Errorf("total_symbols = %d, want 0", meta.Stats.TotalSymbols)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".ark", "index", writer.RepoMapName))
	if err != nil {
		t.Fatal(err)
	}
	var rm writer.RepoMapDoc
	if err := json.Unmarshal(data, &rm); err != nil {
		t.Fatal(err)
	}
	if len(rm.Modules) != 1 || rm.Modules[0].Path != "." {
		t.Fatalf("modules = %+v, want single root module", rm.Modules)
	}
	if rm.Modules[0].Description == nil || *rm.Modules[0].Description != "A small widget library." {
		t.Errorf("root description = %v", rm.Modules[0].Description)
	}
}

func TestBuild_SecondRunWithNoChangesReportsZeroChanged(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")

	first := Build(context.Background(), baseConfig(dir))
	if !first.Success {
		t.Fatalf("first build failed: %+v", first.Error)
	}

	second := Build(context.Background(), baseConfig(dir))
	if !second.Success {
		t.Fatalf("second build failed: %+v", second.Error)
	}
	if second.Stats.FilesChanged != 0 {
		t.Errorf("files_changed = %d, want 0", second.Stats.FilesChanged)
	}
	if !second.Stats.Incremental {
		t.Error("expected second build to be incremental")
	}
}

func TestBuild_ModifyingAFileReindexesOnlyThatFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.py"), "def test_add():\n    pass\n")
	mustWrite(t, filepath.Join(dir, "b.py"), "CONST = 1\n")

	if r := Build(context.Background(), baseConfig(dir)); !r.Success {
		t.Fatalf("first build failed: %+v", r.Error)
	}

	mustWrite(t, filepath.Join(dir, "a.py"), "def test_add():\n    assert 1 + 1 == 2\n")

	second := Build(context.Background(), baseConfig(dir))
	if !second.Success {
		t.Fatalf("second build failed: %+v", second.Error)
	}
	if second.Stats.FilesChanged != 1 {
		t.Errorf("files_changed = %d, want 1", second.Stats.FilesChanged)
	}
}

func TestBuild_ConfigChangeForcesFullReindex(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")

	cfg := baseConfig(dir)
	if r := Build(context.Background(), cfg); !r.Success {
		t.Fatalf("first build failed: %+v", r.Error)
	}

	cfg.RespectGitignore = !cfg.RespectGitignore
	second := Build(context.Background(), cfg)
	if !second.Success {
		t.Fatalf("second build failed: %+v", second.Error)
	}
	if second.Stats.Incremental {
		t.Error("expected config change to force a full (non-incremental) re-index")
	}
}

func TestBuild_TooManyFilesFails(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		mustWrite(t, filepath.Join(dir, "f"+string(rune('0'+i))+".txt"), "x")
	}

	cfg := baseConfig(dir)
	cfg.MaxFiles = 2
	result := Build(context.Background(), cfg)
	if result.Success {
		t.Fatal("expected failure when candidate count exceeds MaxFiles")
	}
	if result.Error.Code != ErrTooManyFiles {
		t.Errorf("error code = %q, want %q", result.Error.Code, ErrTooManyFiles)
	}
}

func TestBuild_UnreadableFileDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")
	// An unreadable file (permission denied) still allows the build to
	// complete, recorded as a warning rather than aborting.
	badPath := filepath.Join(dir, "secret.go")
	mustWrite(t, badPath, "package main\n")
	if err := os.Chmod(badPath, 0o000); err != nil {
		t.Skip("cannot chmod in this environment")
	}
	defer os.Chmod(badPath, 0o644)

	result := Build(context.Background(), baseConfig(dir))
	if !result.Success {
		t.Fatalf("Build should not abort on a per-file read error: %+v", result.Error)
	}
}
