// Package extract reads commit history into normalized commit records.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/sirupsen/logrus"

	"github.com/panbanda/devflow/internal/logging"
	"github.com/panbanda/devflow/internal/progress"
	"github.com/panbanda/devflow/internal/vcs"
	"github.com/panbanda/devflow/pkg/models"
)

// DefaultDays is the analysis window used when none is configured.
const DefaultDays = 30

// ErrInvalidRepository is returned by Open when the path is missing or is
// not inside a git repository.
var ErrInvalidRepository = errors.New("invalid repository")

// Extractor reads commits within a time window.
type Extractor struct {
	days    int
	author  string
	branch  string
	limit   int
	opener  vcs.Opener
	log     *logrus.Logger
	spinner *progress.Tracker
	now     func() time.Time
}

// Option is a functional option for configuring Extractor.
type Option func(*Extractor)

// WithDays sets the number of days of history to read.
func WithDays(days int) Option {
	return func(e *Extractor) {
		if days > 0 {
			e.days = days
		}
	}
}

// WithAuthor keeps only commits whose author name or email contains author,
// ignoring case.
func WithAuthor(author string) Option {
	return func(e *Extractor) {
		e.author = strings.TrimSpace(author)
	}
}

// WithBranch reads history from the named local branch instead of HEAD.
func WithBranch(branch string) Option {
	return func(e *Extractor) {
		e.branch = strings.TrimSpace(branch)
	}
}

// WithLimit caps the number of commits read. Zero means unlimited.
func WithLimit(limit int) Option {
	return func(e *Extractor) {
		if limit >= 0 {
			e.limit = limit
		}
	}
}

// WithOpener sets the VCS opener (useful for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(e *Extractor) {
		e.opener = opener
	}
}

// WithLogger sets the logger for skipped commits and degraded reads.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSpinner sets a progress spinner ticked once per commit read.
func WithSpinner(spinner *progress.Tracker) Option {
	return func(e *Extractor) {
		e.spinner = spinner
	}
}

// WithClock overrides the time source for the window cutoff.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates a new commit extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		days:   DefaultDays,
		opener: vcs.DefaultOpener(),
		log:    logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Days returns the configured window.
func (e *Extractor) Days() int {
	return e.days
}

// Repo is an opened repository bound to an Extractor's settings.
type Repo struct {
	e    *Extractor
	repo vcs.Repository
	path string
}

// Open opens the repository containing path.
func (e *Extractor) Open(path string) (*Repo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRepository, path, err)
	}
	repo, err := e.opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRepository, path, err)
	}
	root := repo.RepoPath()
	if root == "" {
		root = path
	}
	return &Repo{e: e, repo: repo, path: root}, nil
}

// Extract opens path and reads its commits.
func (e *Extractor) Extract(ctx context.Context, path string) ([]models.Commit, error) {
	r, err := e.Open(path)
	if err != nil {
		return nil, err
	}
	return r.Extract(ctx), nil
}

// Path returns the repository root.
func (r *Repo) Path() string {
	return r.path
}

// HeadHash returns the hash history would be read from, or "" when there is none.
func (r *Repo) HeadHash() string {
	ref, err := vcs.ResolveStart(r.repo, r.e.branch)
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

// Extract returns the commits in the window, newest first. Any failure
// reading history yields an empty slice.
func (r *Repo) Extract(ctx context.Context) []models.Commit {
	e := r.e
	log := e.log.WithFields(logrus.Fields{"repo": r.path, "days": e.days})

	ref, err := vcs.ResolveStart(r.repo, e.branch)
	if err != nil {
		switch {
		case errors.Is(err, vcs.ErrNoHead):
			log.Debug("repository has no commits")
		case errors.Is(err, vcs.ErrBranchNotFound):
			log.WithField("branch", e.branch).Info("branch not found")
		default:
			log.WithError(err).Warn("cannot resolve starting reference")
		}
		return []models.Commit{}
	}

	cutoff := e.now().AddDate(0, 0, -e.days)
	iter, err := r.repo.Log(&vcs.LogOptions{From: ref.Hash(), Since: &cutoff})
	if err != nil {
		log.WithError(err).Warn("cannot read commit log")
		return []models.Commit{}
	}
	defer iter.Close()

	author := strings.ToLower(e.author)
	commits := make([]models.Commit, 0)
	err = iter.ForEach(func(c vcs.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.spinner != nil {
			e.spinner.Tick()
		}

		sig := c.Author()
		when := c.Committer().When.UTC()
		if when.Before(cutoff) {
			return nil
		}
		if author != "" &&
			!strings.Contains(strings.ToLower(sig.Name), author) &&
			!strings.Contains(strings.ToLower(sig.Email), author) {
			return nil
		}

		fileStats, err := c.Stats()
		if err != nil {
			log.WithError(err).WithField("commit", c.Hash().String()).Debug("skipping commit without stats")
			return nil
		}

		commit := models.Commit{
			Hash:         c.Hash().String(),
			ShortHash:    models.ShortenHash(c.Hash().String()),
			Author:       sig.Name,
			Email:        sig.Email,
			Message:      c.Message(),
			Timestamp:    when,
			FilesChanged: len(fileStats),
			Files:        make([]models.FileChange, 0, len(fileStats)),
		}
		for _, fs := range fileStats {
			commit.Insertions += fs.Addition
			commit.Deletions += fs.Deletion
			commit.Files = append(commit.Files, models.FileChange{
				Path:       fs.Name,
				Insertions: fs.Addition,
				Deletions:  fs.Deletion,
			})
		}
		commits = append(commits, commit)

		if e.limit > 0 && len(commits) >= e.limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		log.WithError(err).Warn("reading commit log failed")
		return []models.Commit{}
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Timestamp.After(commits[j].Timestamp)
	})
	log.WithField("commits", len(commits)).Debug("extracted commits")
	return commits
}

// Info describes the repository state. Failures leave fields at their zero value.
func (r *Repo) Info(ctx context.Context) models.RepositoryInfo {
	info := models.RepositoryInfo{
		Path:     r.path,
		IsEmpty:  vcs.IsEmpty(r.repo),
		Branches: []string{},
	}
	if info.IsEmpty {
		return info
	}
	info.IsDetached = vcs.IsDetached(r.repo)
	info.DefaultBranch = vcs.DefaultBranch(r.repo)
	if branches, err := r.repo.Branches(); err == nil {
		info.Branches = branches
	}

	ref, err := vcs.ResolveStart(r.repo, r.e.branch)
	if err != nil {
		return info
	}
	iter, err := r.repo.Log(&vcs.LogOptions{From: ref.Hash()})
	if err != nil {
		return info
	}
	defer iter.Close()

	total := 0
	err = iter.ForEach(func(vcs.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++
		return nil
	})
	if err == nil {
		info.TotalCommits = total
	}
	return info
}
