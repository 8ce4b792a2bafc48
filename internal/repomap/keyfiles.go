package repomap

import (
	"regexp"
	"sort"
)

const (
	minKeyLOC      = 300
	minKeyImports  = 10
	minSemanticLOC = 100
)

var semanticBoosts = []struct {
	re    *regexp.Regexp
	boost int
}{
	{regexp.MustCompile(`Complete\.(tsx|jsx)$`), 300},
	{regexp.MustCompile(`(Client|Server)\.\w+$`), 250},
	{regexp.MustCompile(`(Handler|Manager|Controller|Service)\.\w+$`), 200},
	{regexp.MustCompile(`(Store|Context|Provider|Router|Reducer)\.\w+$`), 150},
	{regexp.MustCompile(`(?i)(types|utils|helpers?|constants?|config)\.\w+$`), 100},
	{regexp.MustCompile(`(?i)index\.\w+$`), 50},
}

// keyFileScore reports whether fs qualifies as a key file and, if so, its
// score (LOC plus any semantic boost).
func keyFileScore(fs fileStat) (score int, qualifies bool) {
	if !fs.isCode {
		return 0, false
	}
	boost := 0
	for _, sb := range semanticBoosts {
		if sb.re.MatchString(fs.rel) {
			boost = sb.boost
			break
		}
	}

	switch {
	case fs.loc >= minKeyLOC:
	case fs.imports >= minKeyImports:
	case boost > 0 && fs.loc >= minSemanticLOC:
	default:
		return 0, false
	}
	return fs.loc + boost, true
}

// topKeyFiles ranks fs by keyFileScore and returns up to limit paths,
// guaranteeing the single highest-boost qualifier a slot when any exists.
func topKeyFiles(files []fileStat, limit int) []string {
	type ranked struct {
		path  string
		score int
		boost int
	}
	var candidates []ranked
	for _, fs := range files {
		score, ok := keyFileScore(fs)
		if !ok {
			continue
		}
		boost := 0
		for _, sb := range semanticBoosts {
			if sb.re.MatchString(fs.rel) {
				boost = sb.boost
				break
			}
		}
		candidates = append(candidates, ranked{path: fs.rel, score: score, boost: boost})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].path < candidates[j].path
	})

	if limit <= 0 || len(candidates) <= limit {
		out := make([]string, len(candidates))
		for i, c := range candidates {
			out[i] = c.path
		}
		return out
	}

	// Guarantee the top-boost qualifier a slot if it would otherwise be cut.
	topBoostIdx := -1
	bestBoost := 0
	for i, c := range candidates {
		if c.boost > bestBoost {
			bestBoost = c.boost
			topBoostIdx = i
		}
	}

	kept := candidates[:limit]
	if topBoostIdx >= limit && topBoostIdx >= 0 {
		kept = append([]ranked{candidates[topBoostIdx]}, kept[:limit-1]...)
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].score != kept[j].score {
				return kept[i].score > kept[j].score
			}
			return kept[i].path < kept[j].path
		})
	}

	out := make([]string, len(kept))
	for i, c := range kept {
		out[i] = c.path
	}
	return out
}

// assembleModuleKeyFiles builds a module's key-file list: round-robin
// rank-0, rank-1, ... across its subdirectories, then top-up with the
// highest-scoring remaining qualifiers directly in the module, capped at
// limit.
func assembleModuleKeyFiles(direct []fileStat, subdirs []SubDirectory, limit int) []string {
	var out []string
	seen := map[string]bool{}

	maxRank := 0
	for _, sd := range subdirs {
		if len(sd.KeyFiles) > maxRank {
			maxRank = len(sd.KeyFiles)
		}
	}
	for rank := 0; rank < maxRank && len(out) < limit; rank++ {
		for _, sd := range subdirs {
			if rank >= len(sd.KeyFiles) {
				continue
			}
			p := sd.KeyFiles[rank]
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
				if len(out) >= limit {
					break
				}
			}
		}
	}

	if len(out) < limit {
		for _, p := range topKeyFiles(direct, limit-len(out)) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	return out
}
