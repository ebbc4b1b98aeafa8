package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/devflow/internal/vcs"
)

type mockOpener struct{ mock.Mock }

func (m *mockOpener) PlainOpen(path string) (vcs.Repository, error) {
	args := m.Called(path)
	repo, _ := args.Get(0).(vcs.Repository)
	return repo, args.Error(1)
}

func (m *mockOpener) PlainOpenWithDetect(path string) (vcs.Repository, error) {
	args := m.Called(path)
	repo, _ := args.Get(0).(vcs.Repository)
	return repo, args.Error(1)
}

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Head() (vcs.Reference, error) {
	args := m.Called()
	ref, _ := args.Get(0).(vcs.Reference)
	return ref, args.Error(1)
}

func (m *mockRepository) Branches() ([]string, error) {
	args := m.Called()
	branches, _ := args.Get(0).([]string)
	return branches, args.Error(1)
}

func (m *mockRepository) Branch(name string) (vcs.Reference, error) {
	args := m.Called(name)
	ref, _ := args.Get(0).(vcs.Reference)
	return ref, args.Error(1)
}

func (m *mockRepository) Log(opts *vcs.LogOptions) (vcs.CommitIterator, error) {
	args := m.Called(opts)
	iter, _ := args.Get(0).(vcs.CommitIterator)
	return iter, args.Error(1)
}

func (m *mockRepository) RepoPath() string { return "/fake/repo" }

type fakeRef struct{}

func (fakeRef) Hash() plumbing.Hash { return plumbing.NewHash("0123456789abcdef0123456789abcdef01234567") }
func (fakeRef) Name() string        { return "main" }
func (fakeRef) IsBranch() bool      { return true }

type fakeCommit struct {
	hash     string
	when     time.Time
	statsErr error
}

func (c fakeCommit) Hash() plumbing.Hash { return plumbing.NewHash(c.hash) }
func (c fakeCommit) Stats() (object.FileStats, error) {
	if c.statsErr != nil {
		return nil, c.statsErr
	}
	return object.FileStats{{Name: "a.go", Addition: 3, Deletion: 1}}, nil
}
func (c fakeCommit) Author() object.Signature {
	return object.Signature{Name: "Alice", Email: "alice@example.com", When: c.when}
}
func (c fakeCommit) Committer() object.Signature {
	return object.Signature{Name: "Alice", Email: "alice@example.com", When: c.when}
}
func (c fakeCommit) Message() string { return "feat: x" }

// sliceIter yields commits then returns err.
type sliceIter struct {
	commits []vcs.Commit
	err     error
}

func (i *sliceIter) ForEach(fn func(vcs.Commit) error) error {
	for _, c := range i.commits {
		if err := fn(c); err != nil {
			return err
		}
	}
	return i.err
}

func (i *sliceIter) Close() {}

func newMockExtractor(t *testing.T, iter vcs.CommitIterator, logErr error) *Extractor {
	t.Helper()
	repo := &mockRepository{}
	repo.On("Head").Return(fakeRef{}, nil)
	repo.On("Log", mock.AnythingOfType("*vcs.LogOptions")).Return(iter, logErr)

	opener := &mockOpener{}
	opener.On("PlainOpenWithDetect", mock.Anything).Return(repo, nil)
	return New(WithOpener(opener), WithClock(clock))
}

func TestExtract_IterationErrorYieldsEmpty(t *testing.T) {
	iter := &sliceIter{
		commits: []vcs.Commit{fakeCommit{hash: "1111111111111111111111111111111111111111", when: daysAgo(1)}},
		err:     errors.New("corrupt pack"),
	}
	e := newMockExtractor(t, iter, nil)

	commits, err := e.Extract(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestExtract_LogErrorYieldsEmpty(t *testing.T) {
	e := newMockExtractor(t, nil, errors.New("log error"))

	commits, err := e.Extract(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestExtract_SkipsCommitWithoutStats(t *testing.T) {
	iter := &sliceIter{commits: []vcs.Commit{
		fakeCommit{hash: "1111111111111111111111111111111111111111", when: daysAgo(1)},
		fakeCommit{hash: "2222222222222222222222222222222222222222", when: daysAgo(2), statsErr: errors.New("bad tree")},
		fakeCommit{hash: "3333333333333333333333333333333333333333", when: daysAgo(3)},
	}}
	e := newMockExtractor(t, iter, nil)

	commits, err := e.Extract(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "1111111", commits[0].ShortHash)
	assert.Equal(t, "3333333", commits[1].ShortHash)
	assert.Equal(t, 3, commits[1].Insertions)
	assert.Equal(t, 1, commits[1].Deletions)
}

func TestOpen_OpenerError(t *testing.T) {
	opener := &mockOpener{}
	opener.On("PlainOpenWithDetect", mock.Anything).Return(nil, errors.New("repository does not exist"))

	_, err := New(WithOpener(opener)).Open(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidRepository)
	opener.AssertExpectations(t)
}
