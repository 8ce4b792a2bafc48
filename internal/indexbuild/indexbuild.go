// Package indexbuild orchestrates one end-to-end index build: discovery,
// change analysis, symbol extraction, repo-map and test-map construction,
// ledger rebuilding, and atomic artifact writing.
package indexbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/rybkr/arkindex/internal/change"
	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
	"github.com/rybkr/arkindex/internal/gitinfo"
	"github.com/rybkr/arkindex/internal/ledger"
	"github.com/rybkr/arkindex/internal/repomap"
	"github.com/rybkr/arkindex/internal/symbols"
	"github.com/rybkr/arkindex/internal/testmap"
	"github.com/rybkr/arkindex/internal/writer"
)

// Error codes, string-valued per the external interface contract.
// ErrRipgrepMissing is reserved for builds that shell out to an external
// walker; this implementation walks natively, so it is never emitted.
const (
	ErrTooManyFiles   = "ARK_INDEX_TOO_MANY_FILES"
	ErrRipgrepMissing = "ARK_INDEX_RIPGREP_MISSING"
	ErrNotGitRepo     = "ARK_INDEX_NOT_GIT_REPO"
	ErrGitError       = "ARK_INDEX_GIT_ERROR"
	ErrWriteError     = "ARK_INDEX_WRITE_ERROR"
	ErrReadError      = "ARK_INDEX_READ_ERROR"
	ErrEncodingErr    = "ARK_INDEX_ENCODING_ERROR"
)

// Warning codes.
const (
	WarnFileSkipped     = "ARK_INDEX_FILE_SKIPPED"
	WarnExtractionError = "ARK_INDEX_EXTRACTION_ERROR"
)

const schemaVersion1 = "1.0.0"
const repoMapSchemaVersion = "1.1.0"

// ToolVersion is embedded in every meta.json this build of the indexer
// produces.
var ToolVersion = "dev"

// Config is the invoker contract for a single build.
type Config struct {
	Force            bool
	ArkDir           string // defaults to ".ark/index" under RepoRoot when empty
	RepoRoot         string
	IncludeGlobs     []string
	ExcludeGlobs     []string
	MaxFileKB        int
	MaxFiles         int
	RespectGitignore bool
	FollowSymlinks   bool
	Adapters         []symbols.Adapter
	Verbose          bool
	Log              io.Writer
}

// Error pairs a machine-readable code with a human message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Result is what the builder returns.
type Result struct {
	Success  bool
	Error    *Error
	Stats    writer.Stats
	Warnings []writer.Warning
}

// Build runs one complete index build against cfg.
func Build(ctx context.Context, cfg Config) Result {
	if cfg.ArkDir == "" {
		cfg.ArkDir = filepath.Join(cfg.RepoRoot, ".ark", "index")
	}
	logf := func(format string, args ...any) {
		if cfg.Verbose && cfg.Log != nil {
			fmt.Fprintf(cfg.Log, format+"\n", args...)
		}
	}

	gi := gitinfo.Resolve(cfg.RepoRoot)

	snapshot := configSnapshot(cfg)

	prevMeta, prevLedger, prevSymbols := loadPrevious(cfg.ArkDir)
	fullReindex := cfg.Force
	if !fullReindex && prevMeta != nil && !reflect.DeepEqual(prevMeta.Config, snapshot) {
		logf("config changed since last build, forcing full re-index")
		fullReindex = true
	}
	if prevMeta == nil {
		fullReindex = true
	}

	discResult, err := discovery.Discover(discovery.Options{
		RepoRoot:         cfg.RepoRoot,
		IncludeGlobs:     cfg.IncludeGlobs,
		ExcludeGlobs:     cfg.ExcludeGlobs,
		MaxFileKB:        cfg.MaxFileKB,
		MaxFiles:         cfg.MaxFiles,
		RespectGitignore: cfg.RespectGitignore,
		FollowSymlinks:   cfg.FollowSymlinks,
	})
	if err != nil {
		return Result{Error: &Error{Code: ErrTooManyFiles, Message: err.Error()}}
	}

	var warnings []writer.Warning
	for _, s := range discResult.Skipped {
		warnings = append(warnings, writer.Warning{Code: WarnFileSkipped, File: s.Path, Message: s.Reason})
	}
	for _, e := range discResult.Errors {
		warnings = append(warnings, writer.Warning{Code: WarnFileSkipped, File: e.Path, Message: e.Error})
	}

	// A full re-index classifies against an empty prior ledger, which marks
	// every file New with a freshly computed hash.
	prior := map[string]change.PriorEntry{}
	if !fullReindex {
		prior = ledger.ToPriorEntries(prevLedger)
	}
	verdicts := change.Classify(discResult.Files, prior)

	toIndex := map[string]bool{}
	for _, v := range verdicts {
		if v.Verdict == change.New || v.Verdict == change.Changed {
			toIndex[v.RelPath] = true
		}
	}

	allSymbols, adaptersUsed, extractionWarnings, err := extractSymbols(ctx, discResult.Files, toIndex, prevSymbols, cfg.Adapters)
	if err != nil {
		return Result{Error: &Error{Code: ErrReadError, Message: err.Error()}}
	}
	warnings = append(warnings, extractionWarnings...)

	rm := repomap.Build(cfg.RepoRoot, discResult.Files)
	tm := testmap.Build(discResult.Files)
	newLedger := ledger.Rebuild(discResult.Files, verdicts)

	filesChanged := 0
	for _, v := range verdicts {
		if v.Verdict == change.New || v.Verdict == change.Changed || v.Verdict == change.Deleted {
			filesChanged++
		}
	}

	status := "success"
	if len(warnings) > 0 {
		status = "partial"
	}

	set := toArtifactSet(cfg, gi, rm, tm, newLedger, allSymbols, adaptersUsed, warnings, status, filesChanged, !fullReindex)

	if err := writer.Write(cfg.ArkDir, set); err != nil {
		return Result{Error: &Error{Code: ErrWriteError, Message: err.Error()}}
	}

	return Result{
		Success:  true,
		Stats:    set.Meta.Stats,
		Warnings: warnings,
	}
}

func configSnapshot(cfg Config) writer.ConfigSnapshot {
	includes := append([]string(nil), cfg.IncludeGlobs...)
	excludes := append([]string(nil), cfg.ExcludeGlobs...)
	sort.Strings(includes)
	sort.Strings(excludes)

	names := make([]string, 0, len(cfg.Adapters))
	for _, a := range cfg.Adapters {
		names = append(names, a.Name)
	}
	sort.Strings(names)

	return writer.ConfigSnapshot{
		IncludeGlobs:     includes,
		ExcludeGlobs:     excludes,
		MaxFileKB:        cfg.MaxFileKB,
		MaxFiles:         cfg.MaxFiles,
		RespectGitignore: cfg.RespectGitignore,
		FollowSymlinks:   cfg.FollowSymlinks,
		Adapters:         names,
	}
}

func loadPrevious(arkDir string) (*writer.MetaDoc, ledger.Ledger, map[string][]writer.SymbolDoc) {
	metaData, err := os.ReadFile(filepath.Join(arkDir, writer.MetaName)) //nolint:gosec // G304: caller-configured artifact dir
	if err != nil {
		return nil, nil, nil
	}
	var meta writer.MetaDoc
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, nil, nil // corrupt meta: treated as absent, triggers full re-index
	}

	hashData, err := os.ReadFile(filepath.Join(arkDir, writer.FileHashesName)) //nolint:gosec // G304
	var hashDoc writer.FileHashesDoc
	prevLedger := ledger.Ledger{}
	if err == nil && json.Unmarshal(hashData, &hashDoc) == nil {
		for path, rec := range hashDoc.Files {
			mtime, _ := time.Parse(time.RFC3339, rec.MTime)
			prevLedger[path] = ledger.FileHashEntry{Hash: rec.Hash, MTime: mtime, Size: rec.Size}
		}
	}

	symData, err := os.ReadFile(filepath.Join(arkDir, writer.SymbolsName)) //nolint:gosec // G304
	prevSymbols := map[string][]writer.SymbolDoc{}
	if err == nil {
		for _, line := range splitLines(symData) {
			var sym writer.SymbolDoc
			if json.Unmarshal(line, &sym) == nil {
				prevSymbols[sym.File] = append(prevSymbols[sym.File], sym)
			}
		}
	}

	return &meta, prevLedger, prevSymbols
}

func splitLines(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				out = append(out, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, data[start:])
	}
	return out
}

// extractSymbols runs extraction for files in toIndex (concurrently) and
// reuses prior symbol records for everything else, then serializes symbols
// in discovery order so the emitted symbol_id set stays deterministic.
func extractSymbols(ctx context.Context, files []discovery.File, toIndex map[string]bool, prevSymbols map[string][]writer.SymbolDoc, adapters []symbols.Adapter) ([]writer.SymbolDoc, []string, []writer.Warning, error) {
	type fileResult struct {
		rel     string
		syms    []symbols.Symbol
		adapter string
		err     error
	}

	results := make([]fileResult, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, f := range files {
		i, f := i, f
		rel := fsutil.ToForwardSlashes(f.RelPath)
		if !toIndex[rel] {
			results[i] = fileResult{rel: rel}
			continue
		}
		g.Go(func() error {
			content, err := os.ReadFile(f.AbsPath) //nolint:gosec // G304: repo-rooted discovery path
			if err != nil {
				results[i] = fileResult{rel: rel, err: err}
				return nil
			}
			syms, used, err := symbols.Extract(rel, content, adapters)
			results[i] = fileResult{rel: rel, syms: syms, adapter: used, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	var out []writer.SymbolDoc
	var warnings []writer.Warning
	adapterSet := map[string]bool{}

	for _, r := range results {
		if !toIndex[r.rel] {
			out = append(out, prevSymbols[r.rel]...)
			continue
		}
		if r.err != nil {
			warnings = append(warnings, writer.Warning{Code: WarnExtractionError, File: r.rel, Message: r.err.Error()})
			continue
		}
		if r.adapter != "" {
			adapterSet[r.adapter] = true
		}
		for _, s := range r.syms {
			out = append(out, toSymbolDoc(s))
		}
	}

	var adaptersUsed []string
	for name := range adapterSet {
		adaptersUsed = append(adaptersUsed, name)
	}
	sort.Strings(adaptersUsed)

	return out, adaptersUsed, warnings, nil
}

func toSymbolDoc(s symbols.Symbol) writer.SymbolDoc {
	doc := writer.SymbolDoc{
		SymbolID:   s.SymbolID,
		Name:       s.Name,
		Kind:       string(s.Kind),
		File:       s.File,
		Visibility: string(s.Visibility),
		TopCallers: orEmpty(s.TopCallers),
		TopCallees: orEmpty(s.TopCallees),
		Tags:       orEmpty(s.Tags),
	}
	if s.Span != nil {
		doc.Span = &writer.Span{
			Start: writer.Position{Line: s.Span.Start.Line, Col: s.Span.Start.Col},
			End:   writer.Position{Line: s.Span.End.Line, Col: s.Span.End.Col},
		}
	}
	if s.Signature != "" {
		sig := s.Signature
		doc.Signature = &sig
	}
	if s.DocstringSummary != "" {
		ds := s.DocstringSummary
		doc.DocstringSummary = &ds
	}
	return doc
}
