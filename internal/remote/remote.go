// Package remote resolves repository arguments that name a remote git
// repository and clones them into a temporary directory.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// path@ref, but not the user part of git@host:owner/repo
	ref := ""
	if at := strings.LastIndex(path, "@"); at > 0 && !(strings.HasPrefix(path, "git@") && at == 3) {
		ref = path[at+1:]
		path = path[:at]
		if ref == "" {
			return nil, fmt.Errorf("empty ref in %q", path+"@")
		}
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "ssh://"), strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// isHostPath matches host.tld/owner/repo without a scheme.
func isHostPath(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx <= 0 || strings.Count(path, "/") < 2 {
		return false
	}
	host := path[:slashIdx]
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash is a domain or a relative path.
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the source into a new temporary directory with full history.
// A ref is tried as a branch, then a tag, then a commit hash. Clone progress
// goes to progress when it is non-nil.
func (s *Source) Clone(ctx context.Context, progress io.Writer) error {
	dir, err := os.MkdirTemp("", "devflow-clone-*")
	if err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	s.CloneDir = dir

	opts := git.CloneOptions{URL: s.URL, Progress: progress}
	if s.Ref == "" {
		if _, err := git.PlainCloneContext(ctx, dir, false, &opts); err != nil {
			s.Cleanup()
			return fmt.Errorf("clone %s: %w", s.URL, err)
		}
		return nil
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		o := opts
		o.ReferenceName = name
		o.SingleBranch = true
		_, err := git.PlainCloneContext(ctx, dir, false, &o)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			s.Cleanup()
			return ctx.Err()
		}
		if err := resetDir(dir); err != nil {
			s.Cleanup()
			return err
		}
	}

	if !plumbing.IsHash(s.Ref) {
		s.Cleanup()
		return fmt.Errorf("clone %s: ref %q not found", s.URL, s.Ref)
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, &opts)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(s.Ref)}); err != nil {
		s.Cleanup()
		return fmt.Errorf("checkout %s: %w", s.Ref, err)
	}
	return nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reset clone dir: %w", err)
	}
	return os.MkdirAll(dir, 0o755)
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
