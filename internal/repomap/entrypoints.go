package repomap

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	executableRe  = regexp.MustCompile(`^main\.(ts|js|mjs|go|rs|py)$`)
	moduleEntryRe = regexp.MustCompile(`^(index\.(ts|js|mjs|py)|mod\.rs|__init__\.py)$`)
	libraryRe     = regexp.MustCompile(`^lib\.(ts|js|rs)$`)
)

// detectEntrypoints classifies the files directly inside a module directory
// by filename pattern. When rootFiles is non-nil, every path under bin/ in
// the full discovered set is additionally promoted to an executable
// entrypoint (root module only).
func detectEntrypoints(direct []fileStat, rootFiles []fileStat) []Entrypoint {
	var out []Entrypoint
	seen := map[string]bool{}
	for _, fs := range direct {
		base := filepath.Base(fs.rel)
		switch {
		case executableRe.MatchString(base):
			out = append(out, Entrypoint{Path: fs.rel, Type: "executable"})
		case moduleEntryRe.MatchString(base):
			out = append(out, Entrypoint{Path: fs.rel, Type: "module"})
		case libraryRe.MatchString(base):
			out = append(out, Entrypoint{Path: fs.rel, Type: "library"})
		default:
			continue
		}
		seen[fs.rel] = true
	}

	for _, fs := range rootFiles {
		if strings.HasPrefix(fs.rel, "bin/") && !seen[fs.rel] {
			out = append(out, Entrypoint{Path: fs.rel, Type: "executable"})
			seen[fs.rel] = true
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
