package repomap

import (
	"path/filepath"
	"sort"
	"strings"
)

type dirInfo struct {
	path          string // module-relative path, used for hierarchy comparisons
	fullPath      string // repo-relative path, used for display and cross-module exclusion
	depth         int    // depth within the module, 1 = direct child
	fileCount     int
	codeFileCount int
	directCode    int // code files directly inside this dir (not in descendants)
	files         []fileStat
}

// detectSubdirectories walks up to 3 levels below modPath and returns the
// "important" descendant directories, scored and capped at 10.
func detectSubdirectories(modPath string, within []fileStat, moduleRoots []string) []SubDirectory {
	dirs := collectDirs(modPath, within, moduleRoots)
	if len(dirs) == 0 {
		return nil
	}

	byPath := make(map[string]*dirInfo, len(dirs))
	for i := range dirs {
		byPath[dirs[i].path] = &dirs[i]
	}

	important := map[string]bool{}
	for path, d := range byPath {
		base := filepath.Base(path)
		if importantNames[base] || d.codeFileCount >= 3 {
			important[path] = true
		}
	}

	// Promote nested children of large important parents.
	for path, d := range byPath {
		parent := parentOf(modPath, path)
		pd, ok := byPath[parent]
		if !ok || !important[parent] || pd.codeFileCount < 20 {
			continue
		}
		base := filepath.Base(path)
		if importantNames[base] || d.codeFileCount >= 6 {
			important[path] = true
		}
	}

	type scored struct {
		info  *dirInfo
		score int
	}
	var candidates []scored
	for path, d := range byPath {
		if !important[path] {
			continue
		}
		score := d.codeFileCount
		score += 50
		if d.depth > 1 {
			score += 10
		}
		parent := parentOf(modPath, path)
		if pd, ok := byPath[parent]; ok && important[parent] && pd.codeFileCount >= 20 {
			score -= 30
		}
		candidates = append(candidates, scored{info: d, score: score})
	}

	// Prefer specific subdirectories: drop a parent whose direct code file
	// count is below 10 when one of its children was also selected.
	selectedPaths := map[string]bool{}
	for _, c := range candidates {
		selectedPaths[c.info.path] = true
	}
	var kept []scored
	for _, c := range candidates {
		hasSelectedChild := false
		for other := range selectedPaths {
			if other != c.info.path && strings.HasPrefix(other, c.info.path+"/") {
				hasSelectedChild = true
				break
			}
		}
		if hasSelectedChild && c.info.directCode < 10 {
			continue
		}
		kept = append(kept, c)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].info.path < kept[j].info.path
	})
	if len(kept) > 10 {
		kept = kept[:10]
	}

	out := make([]SubDirectory, 0, len(kept))
	for _, c := range kept {
		keyFiles := topKeyFiles(c.info.files, 3)
		out = append(out, SubDirectory{
			Name:          filepath.Base(c.info.path),
			Path:          c.info.fullPath,
			FileCount:     c.info.fileCount,
			CodeFileCount: c.info.codeFileCount,
			KeyFiles:      keyFiles,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// collectDirs builds dirInfo for every descendant directory of modPath up to
// depth 3, excluding descendants that fall under a different module's path.
func collectDirs(modPath string, within []fileStat, moduleRoots []string) []dirInfo {
	byPath := map[string]*dirInfo{}

	for _, fs := range within {
		rest := strings.TrimPrefix(fs.rel, modPath+"/")
		if rest == fs.rel && modPath != "" {
			continue // not actually under modPath
		}
		segs := strings.Split(rest, "/")
		if len(segs) < 2 {
			continue // file directly in the module, not in a subdirectory
		}

		// Walk every prefix directory up to depth 3.
		for depth := 1; depth <= 3 && depth < len(segs); depth++ {
			dirRel := strings.Join(segs[:depth], "/")
			fullPath := dirRel
			if modPath != "." && modPath != "" {
				fullPath = modPath + "/" + dirRel
			}

			if belongsToOtherModule(fullPath, modPath, moduleRoots) {
				continue
			}

			d, ok := byPath[dirRel]
			if !ok {
				d = &dirInfo{path: dirRel, fullPath: fullPath, depth: depth}
				byPath[dirRel] = d
			}
			d.fileCount++
			if fs.isCode {
				d.codeFileCount++
			}
			if depth == len(segs)-1 && fs.isCode {
				d.directCode++
			}
			if depth == len(segs)-1 {
				d.files = append(d.files, fs)
			}
		}
	}

	out := make([]dirInfo, 0, len(byPath))
	for _, d := range byPath {
		out = append(out, *d)
	}
	return out
}

func belongsToOtherModule(fullPath, modPath string, moduleRoots []string) bool {
	for _, root := range moduleRoots {
		if root == modPath {
			continue
		}
		if fullPath == root || strings.HasPrefix(fullPath, root+"/") {
			return true
		}
	}
	return false
}

func parentOf(modPath, dirRel string) string {
	idx := strings.LastIndex(dirRel, "/")
	if idx < 0 {
		return ""
	}
	return dirRel[:idx]
}
