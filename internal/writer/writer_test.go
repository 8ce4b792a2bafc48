package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestWrite_ProducesAllFiveArtifacts(t *testing.T) {
	dir := t.TempDir()
	set := ArtifactSet{
		FileHashes: FileHashesDoc{SchemaVersion: "1.0.0", Files: map[string]FileHashRecord{
			"a.go": {Hash: "sha256:aaa", MTime: "2026-01-01T00:00:00Z", Size: 10},
		}},
		Symbols: []SymbolDoc{
			{SymbolID: "a.go::Foo", Name: "Foo", Kind: "function", File: "a.go", Visibility: "export"},
		},
		RepoMap: RepoMapDoc{SchemaVersion: "1.1.0", Modules: []ModuleDoc{{Path: "."}}},
		TestMap: TestMapDoc{SchemaVersion: "1.0.0"},
		Meta:    MetaDoc{SchemaVersion: "1.0.0", Status: "success"},
	}

	if err := Write(dir, set); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for _, name := range []string{FileHashesName, SymbolsName, RepoMapName, TestMapName, MetaName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestWrite_SymbolsIsNewlineDelimitedJSON(t *testing.T) {
	dir := t.TempDir()
	set := ArtifactSet{
		Symbols: []SymbolDoc{
			{SymbolID: "a.go::Foo", Name: "Foo", Kind: "function", File: "a.go", Visibility: "export"},
			{SymbolID: "a.go::Bar", Name: "Bar", Kind: "function", File: "a.go", Visibility: "export"},
		},
	}
	if err := Write(dir, set); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, SymbolsName))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var sym SymbolDoc
	if err := json.Unmarshal([]byte(lines[0]), &sym); err != nil {
		t.Fatalf("line 0 not valid JSON: %v", err)
	}
	if sym.Name != "Foo" {
		t.Errorf("sym.Name = %q", sym.Name)
	}
}

func TestWrite_RepoMapRoundTripsExactly(t *testing.T) {
	dir := t.TempDir()
	desc := "widget module"
	want := RepoMapDoc{
		SchemaVersion: "1.1.0",
		Modules: []ModuleDoc{
			{
				Path:        "widget",
				Description: &desc,
				Entrypoints: []EntrypointDoc{{Path: "widget/main.go", Type: "executable"}},
				KeyFiles:    []string{"widget/core.go", "widget/types.go"},
				SubDirectories: []SubDirectoryDoc{
					{Name: "handlers", Path: "widget/handlers", FileCount: 4, CodeFileCount: 4, KeyFiles: []string{"widget/handlers/http.go"}},
				},
			},
		},
		Owners:        map[string][]string{"widget/": {"@rybkr"}},
		BuildCommands: BuildCommandsDoc{Build: "go build ./...", Test: "go test ./..."},
		Overview:      OverviewDoc{TotalFiles: 12, TotalCodeFiles: 9, Languages: map[string]int{"go": 9}, TopDirectories: []DirCountDoc{{Path: "widget", FileCount: 12}}},
	}

	if err := Write(dir, ArtifactSet{RepoMap: want}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, RepoMapName))
	if err != nil {
		t.Fatal(err)
	}
	var got RepoMapDoc
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repo_map.json round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_EmptySymbolsProducesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, ArtifactSet{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, SymbolsName))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty symbols.jsonl, got %d bytes", len(data))
	}
}
