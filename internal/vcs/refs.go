package vcs

import "errors"

// ErrNoHead is returned by Head when the repository has no commits.
var ErrNoHead = errors.New("repository has no HEAD")

// ErrBranchNotFound is returned when a requested branch does not exist.
var ErrBranchNotFound = errors.New("branch not found")

// fallbackBranches are tried in order when HEAD is detached.
var fallbackBranches = []string{"main", "master", "develop"}

// IsEmpty reports whether the repository has no revisions.
func IsEmpty(repo Repository) bool {
	_, err := repo.Head()
	return err != nil
}

// IsDetached reports whether HEAD points at a commit instead of a branch.
func IsDetached(repo Repository) bool {
	head, err := repo.Head()
	if err != nil {
		return false
	}
	return !head.IsBranch()
}

// ResolveStart picks the reference history should be read from.
//
// An explicit branch must exist. Otherwise HEAD is used, unless it is
// detached, in which case the first of main, master and develop that exists
// wins, then the first local branch by name, then HEAD itself.
func ResolveStart(repo Repository, branch string) (Reference, error) {
	if branch != "" {
		return repo.Branch(branch)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	if head.IsBranch() {
		return head, nil
	}

	for _, name := range fallbackBranches {
		if ref, err := repo.Branch(name); err == nil {
			return ref, nil
		}
	}
	if branches, err := repo.Branches(); err == nil && len(branches) > 0 {
		if ref, err := repo.Branch(branches[0]); err == nil {
			return ref, nil
		}
	}
	return head, nil
}

// DefaultBranch names the branch ResolveStart would read when no branch is
// requested, or "" for an empty repository.
func DefaultBranch(repo Repository) string {
	ref, err := ResolveStart(repo, "")
	if err != nil || !ref.IsBranch() {
		return ""
	}
	return ref.Name()
}
