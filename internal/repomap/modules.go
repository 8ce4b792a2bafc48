package repomap

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// importantNames is the fixed set of subdirectory basenames that are always
// considered "important" regardless of size.
var importantNames = map[string]bool{
	"components": true, "lib": true, "hooks": true, "utils": true,
	"services": true, "handlers": true, "actions": true, "api": true,
	"store": true, "data": true, "types": true, "models": true,
	"views": true, "controllers": true, "middleware": true, "routes": true,
	"pages": true, "features": true, "modules": true, "core": true,
	"common": true, "shared": true,
}

// buildModules infers the module set for the repository and, for each
// non-root module, its subdirectories and key files.
func buildModules(repoRoot string, stats []fileStat) []Module {
	byDir := groupByDir(stats)

	roots := manifestRootedModules(repoRoot, byDir)
	if !hasManifest(repoRoot) {
		covered := map[string]bool{}
		for _, r := range roots {
			covered[r] = true
		}
		for _, top := range topLevelCodeModules(byDir) {
			if !covered[top] {
				roots = append(roots, top)
			}
		}
		sort.Strings(roots)
	}

	modules := make([]Module, 0, len(roots)+1)
	modules = append(modules, buildRootModule(repoRoot, stats))

	for _, modPath := range roots {
		modules = append(modules, buildModule(repoRoot, modPath, stats, roots))
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })
	return modules
}

// groupByDir buckets files by their immediate parent directory (forward
// slash, "" for root).
func groupByDir(stats []fileStat) map[string][]fileStat {
	out := make(map[string][]fileStat)
	for _, fs := range stats {
		dir := ""
		if idx := strings.LastIndex(fs.rel, "/"); idx >= 0 {
			dir = fs.rel[:idx]
		}
		out[dir] = append(out[dir], fs)
	}
	return out
}

// manifestRootedModules scans for nested manifest-rooted modules one level
// below the repo root. A manifest at the repo root itself is not a member of
// the returned set (the root is always represented by the synthetic "."
// module); its presence only changes whether buildModules also adds the
// uncovered topLevelCodeModules (it does so only when the root has no
// manifest).
func manifestRootedModules(repoRoot string, byDir map[string][]fileStat) []string {
	var roots []string
	seen := map[string]bool{}
	for dir := range byDir {
		if dir == "" {
			continue
		}
		top := strings.SplitN(dir, "/", 2)[0]
		if seen[top] {
			continue
		}
		if hasManifest(filepath.Join(repoRoot, top)) {
			seen[top] = true
			roots = append(roots, top)
		}
	}
	sort.Strings(roots)
	return roots
}

func topLevelCodeModules(byDir map[string][]fileStat) []string {
	topHasCode := map[string]bool{}
	for dir, fss := range byDir {
		if dir == "" {
			continue
		}
		top := strings.SplitN(dir, "/", 2)[0]
		for _, fs := range fss {
			if fs.isCode {
				topHasCode[top] = true
			}
		}
	}
	var roots []string
	for top, ok := range topHasCode {
		if ok {
			roots = append(roots, top)
		}
	}
	sort.Strings(roots)
	return roots
}

func buildRootModule(repoRoot string, stats []fileStat) Module {
	var direct []fileStat
	for _, fs := range stats {
		if strings.Contains(fs.rel, "/") {
			continue
		}
		direct = append(direct, fs)
	}
	return Module{
		Path:        ".",
		Description: readmeDescription(repoRoot),
		Entrypoints: detectEntrypoints(direct, stats),
		KeyFiles:    topKeyFiles(direct, 15),
	}
}

func buildModule(repoRoot, modPath string, allStats []fileStat, moduleRoots []string) Module {
	prefix := modPath + "/"
	var within []fileStat
	var direct []fileStat
	for _, fs := range allStats {
		if fs.rel == modPath || strings.HasPrefix(fs.rel, prefix) {
			within = append(within, fs)
			rest := strings.TrimPrefix(fs.rel, prefix)
			if !strings.Contains(rest, "/") {
				direct = append(direct, fs)
			}
		}
	}

	subdirs := detectSubdirectories(modPath, within, moduleRoots)

	keyFiles := assembleModuleKeyFiles(direct, subdirs, 15)

	return Module{
		Path:           modPath,
		Description:    readmeDescription(filepath.Join(repoRoot, filepath.FromSlash(modPath))),
		Entrypoints:    detectEntrypoints(direct, nil),
		KeyFiles:       keyFiles,
		SubDirectories: subdirs,
	}
}

var (
	headingRe   = regexp.MustCompile(`^#{1,6}\s`)
	badgeLineRe = regexp.MustCompile(`^\[!\[`)
)

// readmeDescription extracts the first non-heading, non-badge, non-code-fence
// paragraph of dirAbs/README.md, collapsed to one line and capped at 200
// characters.
func readmeDescription(dirAbs string) string {
	data, err := os.ReadFile(filepath.Join(dirAbs, "README.md")) //nolint:gosec // G304: repo-rooted path
	if err != nil {
		return ""
	}

	src := text.NewReader(data)
	doc := goldmark.New().Parser().Parse(src)

	var result string
	err2 := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || result != "" {
			return ast.WalkContinue, nil
		}
		if n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		line := paragraphText(n, data)
		line = strings.TrimSpace(line)
		if line == "" || headingRe.MatchString(line) || badgeLineRe.MatchString(line) {
			return ast.WalkContinue, nil
		}
		result = collapseWhitespace(line)
		return ast.WalkStop, nil
	})
	if err2 != nil {
		return ""
	}
	if len(result) > 200 {
		result = result[:197] + "..."
	}
	return result
}

func paragraphText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
