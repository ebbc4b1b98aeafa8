// Package vcs provides version control system abstractions.
package vcs

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository provides access to git repository operations.
type Repository interface {
	// Head returns a reference to the HEAD commit.
	Head() (Reference, error)
	// Branches returns the short names of all local branches, sorted.
	Branches() ([]string, error)
	// Branch resolves a local branch by short name.
	Branch(name string) (Reference, error)
	// Log returns a commit iterator starting from opts.From, or HEAD when unset.
	Log(opts *LogOptions) (CommitIterator, error)
	// RepoPath returns the root path of the repository.
	RepoPath() string
}

// Reference represents a git reference (branch, tag, HEAD).
type Reference interface {
	Hash() plumbing.Hash
	// Name returns the short reference name ("main", "HEAD").
	Name() string
	// IsBranch reports whether the reference points at a local branch.
	IsBranch() bool
}

// LogOptions configures the commit log query.
type LogOptions struct {
	From  plumbing.Hash
	Since *time.Time
}

// CommitIterator iterates over commits.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the commit hash.
	Hash() plumbing.Hash
	// Stats returns file stats for this commit.
	Stats() (object.FileStats, error)
	// Author returns commit author information.
	Author() object.Signature
	// Committer returns who recorded the commit and when. Its time orders
	// the log and bounds LogOptions.Since.
	Committer() object.Signature
	// Message returns the commit message.
	Message() string
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
