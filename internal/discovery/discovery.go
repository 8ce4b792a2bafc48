// Package discovery enumerates the files eligible for indexing: it walks a
// repository root honoring include/exclude globs, gitignore semantics, size
// and count caps, and symlink policy, and reports everything it skipped
// along with why.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rybkr/arkindex/internal/fsutil"
)

// ErrTooManyFiles is returned when the number of candidate files exceeds
// Options.MaxFiles, before any include/exclude/size filtering is applied.
var ErrTooManyFiles = errors.New("discovery: too many files")

// defaultArkDirName is the artifact directory name always excluded from
// discovery, regardless of user-supplied globs.
const defaultArkDirName = ".ark"

// File describes one file discovered under the repository root.
type File struct {
	RelPath string // forward-slash, relative to RepoRoot
	AbsPath string
	Size    int64
	ModTime time.Time
}

// Skipped records a candidate path that was excluded, and why.
type Skipped struct {
	Path   string
	Reason string
}

// FileError records a path that could not be processed due to an I/O error.
type FileError struct {
	Path  string
	Error string
}

// Options configures a discovery walk.
type Options struct {
	RepoRoot         string
	IncludeGlobs     []string
	ExcludeGlobs     []string
	MaxFileKB        int
	MaxFiles         int
	RespectGitignore bool
	FollowSymlinks   bool
	// ArkDirName overrides the artifact directory name that is always
	// excluded. Defaults to ".ark" when empty.
	ArkDirName string
}

// Result is the outcome of a discovery walk.
type Result struct {
	Files   []File
	Skipped []Skipped
	Errors  []FileError
}

// walker carries the mutable state of a single Discover call.
type walker struct {
	opts      Options
	arkDir    string
	matcher   *ignoreMatcher
	candidate int
	result    Result
}

// Discover walks opts.RepoRoot and returns every eligible file. It never
// aborts on a single bad path — stat failures, unreadable files, and
// resolved symlink targets outside the root all become Skipped or Errors
// entries. The sole fatal condition is ErrTooManyFiles.
func Discover(opts Options) (*Result, error) {
	if opts.ArkDirName == "" {
		opts.ArkDirName = defaultArkDirName
	}
	w := &walker{
		opts:   opts,
		arkDir: opts.ArkDirName,
	}
	if opts.RespectGitignore {
		w.matcher = newIgnoreMatcher()
		w.matcher.loadRoot(opts.RepoRoot)
	}

	if err := w.walk(opts.RepoRoot, ""); err != nil {
		return nil, err
	}

	sort.Slice(w.result.Files, func(i, j int) bool {
		return w.result.Files[i].RelPath < w.result.Files[j].RelPath
	})
	return &w.result, nil
}

// walk recursively visits dirAbs (whose path relative to the repo root is
// dirRel, "" for the root itself).
func (w *walker) walk(dirAbs, dirRel string) error {
	if w.opts.RespectGitignore && dirRel != "" {
		w.matcher.loadDir(w.opts.RepoRoot, dirRel+"/")
	}

	entries, err := os.ReadDir(dirAbs)
	if err != nil {
		w.result.Errors = append(w.result.Errors, FileError{Path: dirRel, Error: err.Error()})
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" || name == w.arkDir {
			continue // built-in exclude, applied unconditionally
		}

		entryRel := name
		if dirRel != "" {
			entryRel = dirRel + "/" + name
		}
		entryAbs := filepath.Join(dirAbs, name)

		isDir, isSymlink := w.classify(entry)
		if isSymlink {
			ok, realAbs, reason := w.resolveSymlink(entryAbs)
			if !ok {
				w.result.Skipped = append(w.result.Skipped, Skipped{Path: entryRel, Reason: reason})
				continue
			}
			entryAbs = realAbs
			info, statErr := os.Stat(realAbs)
			if statErr != nil {
				w.result.Skipped = append(w.result.Skipped, Skipped{Path: entryRel, Reason: "unreadable symlink target"})
				continue
			}
			isDir = info.IsDir()
		}

		if isDir {
			if w.opts.RespectGitignore && w.matcher.isIgnored(entryRel, true) {
				continue
			}
			if err := w.walk(entryAbs, entryRel); err != nil {
				return err
			}
			continue
		}

		if err := w.visitFile(entryRel, entryAbs); err != nil {
			return err
		}
	}
	return nil
}

// classify reports whether a directory entry is a directory and/or a
// symlink, from the cheap type bits reported by the directory read itself.
func (w *walker) classify(entry os.DirEntry) (isDir, isSymlink bool) {
	if entry.Type()&os.ModeSymlink != 0 {
		return false, true
	}
	return entry.IsDir(), false
}

// resolveSymlink applies the configured symlink policy. It returns the
// resolved absolute path on success.
func (w *walker) resolveSymlink(entryAbs string) (ok bool, realAbs string, reason string) {
	if !w.opts.FollowSymlinks {
		return false, "", "symlink (not followed)"
	}
	real, err := filepath.EvalSymlinks(entryAbs)
	if err != nil {
		return false, "", "broken symlink"
	}
	rel, err := filepath.Rel(w.opts.RepoRoot, real)
	if err != nil || !fsutil.WithinRoot(fsutil.ToForwardSlashes(rel), w.opts.RepoRoot) {
		return false, "", "symlink target outside repository root"
	}
	return true, real, ""
}

// visitFile applies the count cap, gitignore check, include/exclude globs,
// and size cap to a single file candidate.
func (w *walker) visitFile(rel, abs string) error {
	w.candidate++
	if w.opts.MaxFiles > 0 && w.candidate > w.opts.MaxFiles {
		return fmt.Errorf("%w: exceeded %d files", ErrTooManyFiles, w.opts.MaxFiles)
	}

	if w.opts.RespectGitignore && w.matcher.isIgnored(rel, false) {
		return nil
	}

	if !matchesIncludeGlobs(rel, w.opts.IncludeGlobs) {
		w.result.Skipped = append(w.result.Skipped, Skipped{Path: rel, Reason: "excluded by include glob"})
		return nil
	}
	if matchesAnyGlob(rel, w.opts.ExcludeGlobs) {
		w.result.Skipped = append(w.result.Skipped, Skipped{Path: rel, Reason: "excluded by exclude glob"})
		return nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		w.result.Skipped = append(w.result.Skipped, Skipped{Path: rel, Reason: "stat failed: " + err.Error()})
		return nil
	}

	if w.opts.MaxFileKB > 0 {
		kb := fsutil.SizeKBFromBytes(info.Size())
		if kb > w.opts.MaxFileKB {
			w.result.Skipped = append(w.result.Skipped, Skipped{Path: rel, Reason: "exceeds max_file_kb"})
			return nil
		}
	}

	w.result.Files = append(w.result.Files, File{
		RelPath: rel,
		AbsPath: abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	return nil
}

// matchesIncludeGlobs reports whether rel matches at least one include
// pattern. A single "**/*" pattern means "no additional filter" to avoid
// pathological glob-engine behavior on huge trees.
func matchesIncludeGlobs(rel string, globs []string) bool {
	if len(globs) == 0 {
		return true
	}
	if len(globs) == 1 && globs[0] == "**/*" {
		return true
	}
	return matchesAnyGlob(rel, globs)
}

// matchesAnyGlob reports whether rel matches any of globs, using the same
// "**"-aware matcher as gitignore patterns.
func matchesAnyGlob(rel string, globs []string) bool {
	for _, g := range globs {
		if matchGlob(g, rel) {
			return true
		}
	}
	return false
}
