package models

import (
	"strings"
	"time"
)

// FileChange is the per-file numstat of a single commit.
type FileChange struct {
	Path       string `json:"path"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// Commit is one extracted commit. Values are never mutated after extraction.
type Commit struct {
	Hash         string       `json:"hash"`
	ShortHash    string       `json:"short_hash"`
	Author       string       `json:"author"`
	Email        string       `json:"email"`
	Message      string       `json:"message"`
	Timestamp    time.Time    `json:"timestamp"` // committer time, UTC
	FilesChanged int          `json:"files_changed"`
	Insertions   int          `json:"insertions"`
	Deletions    int          `json:"deletions"`
	Files        []FileChange `json:"files,omitempty"`
}

// LinesChanged returns insertions plus deletions.
func (c Commit) LinesChanged() int {
	return c.Insertions + c.Deletions
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	msg := strings.TrimSpace(c.Message)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}

// ShortenHash returns the 7-character abbreviation of a commit hash.
func ShortenHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// CommandUsage is the usage count of one shell command, as mined from shell history.
type CommandUsage struct {
	Command string `json:"command" yaml:"command"`
	Count   int    `json:"count" yaml:"count"`
}

// RepositoryInfo describes the state of a repository at extraction time.
type RepositoryInfo struct {
	Path          string   `json:"path"`
	IsEmpty       bool     `json:"is_empty"`
	DefaultBranch string   `json:"default_branch,omitempty"`
	IsDetached    bool     `json:"is_detached"`
	Branches      []string `json:"branches"`
	TotalCommits  int      `json:"total_commits"`
}
