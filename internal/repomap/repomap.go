// Package repomap builds a navigable map of a repository: its modules,
// important subdirectories, key files, entrypoints, ownership, build
// commands, and a directory/language overview.
package repomap

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
)

// Entrypoint is a direct child of a module identified as a program entry.
type Entrypoint struct {
	Path        string
	Type        string // executable | module | library
	Description string
}

// KeyFile is a file selected as representative of a module or subdirectory.
type KeyFile struct {
	Path  string
	Score int
}

// SubDirectory is an important descendant directory within a module.
type SubDirectory struct {
	Name          string
	Path          string
	FileCount     int
	CodeFileCount int
	KeyFiles      []string
	Description   string
}

// Module is a top-level unit of the repository: either manifest-rooted or,
// absent a root manifest, a bare top-level directory containing code.
type Module struct {
	Path           string // "." for the root module
	Description    string
	Entrypoints    []Entrypoint
	KeyFiles       []string
	SubDirectories []SubDirectory
}

// Overview summarizes the whole tree.
type Overview struct {
	TotalFiles     int
	TotalCodeFiles int
	LanguageHist   map[string]int
	TopDirectories []DirCount
}

// DirCount is one entry of the top-level directory ranking.
type DirCount struct {
	Path      string
	FileCount int
}

// RepoMap is the full output of Build.
type RepoMap struct {
	Modules       []Module
	Owners        map[string][]string
	BuildCommands BuildCommands
	Overview      Overview
}

// manifestNames are the package manifests that root a module, in no
// particular priority order (any one is sufficient).
var manifestNames = []string{"package.json", "Cargo.toml", "go.mod", "pyproject.toml", "setup.py"}

// fileStat is the minimal per-file info the builder needs, derived once from
// discovery.File so the rest of this package never touches the filesystem
// for bookkeeping that discovery already paid for.
type fileStat struct {
	rel     string
	abs     string
	isCode  bool
	loc     int
	imports int
}

// Build constructs a RepoMap for the files discovery found under repoRoot.
func Build(repoRoot string, files []discovery.File) RepoMap {
	stats := make([]fileStat, 0, len(files))
	for _, f := range files {
		rel := fsutil.ToForwardSlashes(f.RelPath)
		isCode := fsutil.IsCodeFile(rel)
		fs := fileStat{rel: rel, abs: f.AbsPath, isCode: isCode}
		if isCode {
			fs.loc, fs.imports = analyzeSource(f.AbsPath)
		}
		stats = append(stats, fs)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].rel < stats[j].rel })

	modules := buildModules(repoRoot, stats)

	return RepoMap{
		Modules:       modules,
		Owners:        parseCodeowners(repoRoot),
		BuildCommands: detectBuildCommands(repoRoot),
		Overview:      buildOverview(stats),
	}
}

func hasManifest(dirAbs string) bool {
	for _, name := range manifestNames {
		if _, err := os.Stat(filepath.Join(dirAbs, name)); err == nil {
			return true
		}
	}
	return false
}

func buildOverview(stats []fileStat) Overview {
	hist := make(map[string]int)
	topLevel := make(map[string]int)
	var codeCount int

	for _, fs := range stats {
		lang := string(fsutil.LanguageOf(fs.rel))
		hist[lang]++
		if fs.isCode {
			codeCount++
		}
		if idx := strings.Index(fs.rel, "/"); idx >= 0 {
			topLevel[fs.rel[:idx]]++
		} else {
			topLevel["."]++
		}
	}

	var dirs []DirCount
	for name, count := range topLevel {
		dirs = append(dirs, DirCount{Path: name, FileCount: count})
	}
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].FileCount != dirs[j].FileCount {
			return dirs[i].FileCount > dirs[j].FileCount
		}
		return dirs[i].Path < dirs[j].Path
	})
	if len(dirs) > 10 {
		dirs = dirs[:10]
	}

	return Overview{
		TotalFiles:     len(stats),
		TotalCodeFiles: codeCount,
		LanguageHist:   hist,
		TopDirectories: dirs,
	}
}
