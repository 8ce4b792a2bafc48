// Package writer serializes the five index artifacts to disk, each via a
// temp-file-then-rename so a reader never observes a half-written file, in
// the fixed order the artifact set requires: file_hashes, symbols, repo_map,
// test_map, and finally meta — whose presence is the sole "index complete"
// signal.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

const (
	FileHashesName = "file_hashes.json"
	SymbolsName    = "symbols.jsonl"
	RepoMapName    = "repo_map.json"
	TestMapName    = "test_map.json"
	MetaName       = "meta.json"
)

// FileHashRecord is one entry of FileHashesDoc.Files.
type FileHashRecord struct {
	Hash  string `json:"hash"`
	MTime string `json:"mtime"`
	Size  int64  `json:"size"`
}

// FileHashesDoc is the file_hashes.json document.
type FileHashesDoc struct {
	SchemaVersion string                    `json:"schema_version"`
	GitCommit     *string                   `json:"git_commit"`
	Files         map[string]FileHashRecord `json:"files"`
}

// Position mirrors symbols.Position for serialization.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Span mirrors symbols.Span for serialization.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// SymbolDoc is one line of symbols.jsonl.
type SymbolDoc struct {
	SymbolID         string   `json:"symbol_id"`
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	File             string   `json:"file"`
	Span             *Span    `json:"span,omitempty"`
	Signature        *string  `json:"signature,omitempty"`
	DocstringSummary *string  `json:"docstring_summary,omitempty"`
	Visibility       string   `json:"visibility"`
	TopCallers       []string `json:"top_callers"`
	TopCallees       []string `json:"top_callees"`
	Tags             []string `json:"tags"`
}

// EntrypointDoc mirrors repomap.Entrypoint.
type EntrypointDoc struct {
	Path        string  `json:"path"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

// SubDirectoryDoc mirrors repomap.SubDirectory.
type SubDirectoryDoc struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	FileCount     int     `json:"fileCount"`
	CodeFileCount int     `json:"codeFileCount"`
	KeyFiles      []string `json:"key_files"`
	Description   *string `json:"description,omitempty"`
}

// ModuleDoc mirrors repomap.Module.
type ModuleDoc struct {
	Path           string            `json:"path"`
	Description    *string           `json:"description,omitempty"`
	Entrypoints    []EntrypointDoc   `json:"entrypoints"`
	KeyFiles       []string          `json:"key_files"`
	SubDirectories []SubDirectoryDoc `json:"subdirectories,omitempty"`
}

// BuildCommandsDoc mirrors repomap.BuildCommands, omitting unpopulated
// fields per the "emit only populated fields" rule.
type BuildCommandsDoc struct {
	Build    string `json:"build,omitempty"`
	Test     string `json:"test,omitempty"`
	TestFull string `json:"test_full,omitempty"`
	Lint     string `json:"lint,omitempty"`
}

// OverviewDoc mirrors repomap.Overview.
type OverviewDoc struct {
	TotalFiles     int            `json:"total_files"`
	TotalCodeFiles int            `json:"total_code_files"`
	Languages      map[string]int `json:"languages"`
	TopDirectories []DirCountDoc  `json:"top_directories"`
}

// DirCountDoc mirrors repomap.DirCount.
type DirCountDoc struct {
	Path      string `json:"path"`
	FileCount int    `json:"file_count"`
}

// RepoMapDoc is the repo_map.json document.
type RepoMapDoc struct {
	SchemaVersion string              `json:"schema_version"`
	Modules       []ModuleDoc         `json:"modules"`
	Owners        map[string][]string `json:"owners,omitempty"`
	BuildCommands BuildCommandsDoc    `json:"build_commands"`
	Overview      OverviewDoc         `json:"overview"`
}

// TestEntryDoc mirrors testmap.Entry.
type TestEntryDoc struct {
	TestID   string   `json:"test_id"`
	File     string   `json:"file"`
	Name     *string  `json:"name"`
	Tags     []string `json:"tags"`
	Tier     string   `json:"tier"`
	Packages []string `json:"packages"`
}

// TestMapDoc is the test_map.json document.
type TestMapDoc struct {
	SchemaVersion string         `json:"schema_version"`
	Tests         []TestEntryDoc `json:"tests"`
}

// Stats summarizes one build for meta.json.
type Stats struct {
	TotalFiles   int  `json:"total_files"`
	TotalSymbols int  `json:"total_symbols"`
	Incremental  bool `json:"incremental"`
	FilesChanged int  `json:"files_changed"`
}

// ConfigSnapshot is the effective config embedded in meta.json, also used to
// detect config drift between builds.
type ConfigSnapshot struct {
	IncludeGlobs     []string `json:"include_globs"`
	ExcludeGlobs     []string `json:"exclude_globs"`
	MaxFileKB        int      `json:"max_file_kb"`
	MaxFiles         int      `json:"max_files"`
	RespectGitignore bool     `json:"respect_gitignore"`
	FollowSymlinks   bool     `json:"follow_symlinks"`
	Adapters         []string `json:"adapters"`
}

// Warning is one non-fatal issue recorded during a build.
type Warning struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Message string `json:"message,omitempty"`
}

// MetaDoc is the meta.json document — written last, its presence the sole
// "index complete" signal.
type MetaDoc struct {
	SchemaVersion string         `json:"schema_version"`
	ToolVersion   string         `json:"tool_version"`
	Timestamp     string         `json:"timestamp"`
	RepoRoot      string         `json:"repo_root"`
	GitCommit     *string        `json:"git_commit"`
	Status        string         `json:"status"`
	Stats         Stats          `json:"stats"`
	Config        ConfigSnapshot `json:"config"`
	AdaptersUsed  []string       `json:"adapters_used"`
	Warnings      []Warning      `json:"warnings"`
}

// ArtifactSet bundles every document one build produces.
type ArtifactSet struct {
	FileHashes FileHashesDoc
	Symbols    []SymbolDoc
	RepoMap    RepoMapDoc
	TestMap    TestMapDoc
	Meta       MetaDoc
}

// WriteError wraps the underlying cause with the ARK_INDEX_WRITE_ERROR code.
type WriteError struct {
	Artifact string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Artifact, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write serializes the artifact set to dir in the fixed order the index
// requires. On any failure it removes whatever temp files remain and
// returns a *WriteError.
func Write(dir string, set ArtifactSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Artifact: dir, Err: err}
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{FileHashesName, func() error { return writeJSON(dir, FileHashesName, set.FileHashes) }},
		{SymbolsName, func() error { return writeJSONLines(dir, SymbolsName, set.Symbols) }},
		{RepoMapName, func() error { return writeJSON(dir, RepoMapName, set.RepoMap) }},
		{TestMapName, func() error { return writeJSON(dir, TestMapName, set.TestMap) }},
		{MetaName, func() error { return writeJSON(dir, MetaName, set.Meta) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			cleanupTemps(dir)
			return &WriteError{Artifact: step.name, Err: err}
		}
	}
	return nil
}

func tempPath(dir, name string) string {
	return filepath.Join(dir, "."+name+".tmp")
}

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(dir, name, data)
}

// writeJSONLines serializes records as newline-delimited JSON, one object
// per line, with a trailing newline when non-empty.
func writeJSONLines[T any](dir, name string, records []T) error {
	var buf []byte
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return writeAtomic(dir, name, buf)
}

func writeAtomic(dir, name string, data []byte) error {
	tmp := tempPath(dir, name)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, name))
}

// cleanupTemps removes any lingering ".*.tmp" files left by a failed write.
func cleanupTemps(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if len(name) > 0 && name[0] == '.' && filepath.Ext(name) == ".tmp" {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
