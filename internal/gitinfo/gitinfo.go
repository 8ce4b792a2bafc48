// Package gitinfo resolves the minimal git context a build needs: the
// current HEAD commit, if any, and the work-tree root a repo-relative path
// lives under. Absence of a git repository is never an error here — the
// build simply records a nil commit.
package gitinfo

import (
	"github.com/go-git/go-git/v5"
)

// Info is the git context resolved for a given starting path.
type Info struct {
	// Commit is the HEAD commit hash, or "" if there is no commit yet
	// (fresh repo) or the path is not inside a git repository.
	Commit string
	// WorkTreeRoot is the repository's work-tree root, or "" if the path
	// is not inside a git repository.
	WorkTreeRoot string
}

// Resolve opens the repository containing startPath (searching upward for
// .git the way `git rev-parse --show-toplevel` does) and returns its HEAD
// commit and work-tree root. A missing repository yields a zero Info; an
// unborn HEAD yields an empty Commit with WorkTreeRoot still set. Neither is
// an error — git is optional context for a build, not a requirement.
func Resolve(startPath string) Info {
	repo, err := git.PlainOpenWithOptions(startPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}
	}

	wt, err := repo.Worktree()
	var root string
	if err == nil {
		root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	if err != nil {
		return Info{WorkTreeRoot: root}
	}

	return Info{Commit: head.Hash().String(), WorkTreeRoot: root}
}
