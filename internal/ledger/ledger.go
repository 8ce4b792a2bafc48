// Package ledger maintains the content-hash record that drives incremental
// reuse between builds: one entry per surviving file, dropped the moment a
// file disappears from discovery.
package ledger

import (
	"time"

	"github.com/rybkr/arkindex/internal/change"
	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
)

// FileHashEntry is one record of the hash ledger.
type FileHashEntry struct {
	Hash  string
	MTime time.Time
	Size  int64
}

// Ledger maps a repo-relative, forward-slash path to its hash entry.
type Ledger map[string]FileHashEntry

// Rebuild produces the next ledger from the current discovery results and
// the change verdicts computed against the previous ledger. Deleted files
// are simply absent from the result; new and changed files get their freshly
// computed hash; unchanged files carry their verdict hash forward (which is
// either the prior hash, when the quick-check matched, or a freshly computed
// one that happened to equal it).
func Rebuild(files []discovery.File, verdicts []change.Result) Ledger {
	byPath := make(map[string]discovery.File, len(files))
	for _, f := range files {
		byPath[fsutil.ToForwardSlashes(f.RelPath)] = f
	}

	out := make(Ledger, len(verdicts))
	for _, v := range verdicts {
		if v.Verdict == change.Deleted {
			continue
		}
		f, ok := byPath[v.RelPath]
		if !ok {
			continue
		}
		out[v.RelPath] = FileHashEntry{Hash: v.Hash, MTime: f.ModTime, Size: f.Size}
	}
	return out
}

// ToPriorEntries converts a Ledger back into the PriorEntry map that the
// change package compares the next discovery against.
func ToPriorEntries(l Ledger) map[string]change.PriorEntry {
	out := make(map[string]change.PriorEntry, len(l))
	for path, e := range l {
		out[path] = change.PriorEntry{Hash: e.Hash, MTime: e.MTime, Size: e.Size}
	}
	return out
}
