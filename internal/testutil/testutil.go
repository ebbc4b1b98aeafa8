// Package testutil builds real on-disk git repositories for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Change describes one commit to record in a Repo.
type Change struct {
	Author  string
	Email   string
	Message string
	When    time.Time
	// CommittedAt sets a committer time apart from When, as a rebase or
	// cherry-pick does. Zero uses When.
	CommittedAt time.Time
	// Files maps repository-relative paths to their new content.
	Files map[string]string
}

// Repo is a git repository in a test temp dir.
type Repo struct {
	t       *testing.T
	Path    string
	repo    *git.Repository
	commits int
}

// NewRepo initializes an empty repository. Its initial branch is master.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit error: %v", err)
	}
	return &Repo{t: t, Path: dir, repo: repo}
}

// Commit writes c.Files, stages them and commits. Author and committer share
// name and email; the committer time is c.CommittedAt when set, else c.When.
func (r *Repo) Commit(c Change) plumbing.Hash {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree error: %v", err)
	}

	r.commits++
	if len(c.Files) == 0 {
		c.Files = map[string]string{"CHANGES.txt": fmt.Sprintf("change %d: %s\n", r.commits, c.Message)}
	}
	for name, content := range c.Files {
		WriteFile(r.t, filepath.Join(r.Path, name), content)
		if _, err := wt.Add(name); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}

	if c.Author == "" {
		c.Author = "Test User"
	}
	if c.Email == "" {
		c.Email = "test@example.com"
	}
	if c.When.IsZero() {
		c.When = time.Now()
	}
	if c.Message == "" {
		c.Message = "update"
	}
	if c.CommittedAt.IsZero() {
		c.CommittedAt = c.When
	}
	author := &object.Signature{Name: c.Author, Email: c.Email, When: c.When}
	committer := &object.Signature{Name: c.Author, Email: c.Email, When: c.CommittedAt}
	hash, err := wt.Commit(c.Message, &git.CommitOptions{Author: author, Committer: committer})
	if err != nil {
		r.t.Fatalf("Commit error: %v", err)
	}
	return hash
}

// Head returns the current HEAD hash.
func (r *Repo) Head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("Head error: %v", err)
	}
	return ref.Hash()
}

// CreateBranch points a new local branch at HEAD without checking it out.
func (r *Repo) CreateBranch(name string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), r.Head())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("SetReference(%s) error: %v", name, err)
	}
}

// Checkout switches HEAD to an existing local branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("Checkout(%s) error: %v", name, err)
	}
}

// DeleteBranch removes a local branch reference.
func (r *Repo) DeleteBranch(name string) {
	r.t.Helper()
	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		r.t.Fatalf("RemoveReference(%s) error: %v", name, err)
	}
}

// Detach points HEAD directly at hash.
func (r *Repo) Detach(hash plumbing.Hash) {
	r.t.Helper()
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, hash)); err != nil {
		r.t.Fatalf("Detach error: %v", err)
	}
}
