// Package change classifies discovered files against a prior hash ledger,
// deciding which files need re-extraction without rehashing content that
// plainly has not moved.
package change

import (
	"time"

	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
)

// Verdict is the outcome of comparing one file against the prior ledger.
type Verdict string

const (
	New       Verdict = "new"
	Changed   Verdict = "changed"
	Unchanged Verdict = "unchanged"
	Deleted   Verdict = "deleted"
)

// PriorEntry is the subset of a previous build's hash ledger entry needed to
// classify a file on the next build.
type PriorEntry struct {
	Hash  string
	MTime time.Time
	Size  int64
}

// Result is the classification of one file.
type Result struct {
	RelPath string
	Verdict Verdict
	Hash    string // newly computed or carried over from the prior entry
}

// Classify compares the files discovery found against the prior ledger
// (keyed by relative path) and returns one Result per discovered file plus
// one Result per ledger entry with no surviving discovery (Deleted).
//
// A quick-check match (identical mtime and size) claims Unchanged without
// rehashing. On a quick-check miss the file is rehashed: identical content
// still classifies Unchanged (stats drifted, bytes didn't); otherwise
// Changed. A stat failure during hashing classifies Changed, conservatively.
func Classify(files []discovery.File, prior map[string]PriorEntry) []Result {
	results := make([]Result, 0, len(files)+len(prior))
	seen := make(map[string]bool, len(files))

	for _, f := range files {
		rel := fsutil.ToForwardSlashes(f.RelPath)
		seen[rel] = true

		prev, ok := prior[rel]
		if !ok {
			hash, err := fsutil.HashFile(f.AbsPath)
			if err != nil {
				results = append(results, Result{RelPath: rel, Verdict: Changed})
				continue
			}
			results = append(results, Result{RelPath: rel, Verdict: New, Hash: hash})
			continue
		}

		if mtimeString(f.ModTime) == mtimeString(prev.MTime) && f.Size == prev.Size {
			results = append(results, Result{RelPath: rel, Verdict: Unchanged, Hash: prev.Hash})
			continue
		}

		hash, err := fsutil.HashFile(f.AbsPath)
		if err != nil {
			results = append(results, Result{RelPath: rel, Verdict: Changed})
			continue
		}
		if hash == prev.Hash {
			results = append(results, Result{RelPath: rel, Verdict: Unchanged, Hash: hash})
			continue
		}
		results = append(results, Result{RelPath: rel, Verdict: Changed, Hash: hash})
	}

	for rel := range prior {
		if !seen[rel] {
			results = append(results, Result{RelPath: rel, Verdict: Deleted})
		}
	}

	return results
}

// mtimeString renders an mtime the way the ledger stores it. The quick-check
// compares these strings, not time.Time values, so sub-second drift that the
// serialized ledger cannot represent never defeats the check.
func mtimeString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
