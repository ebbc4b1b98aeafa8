package hotspot

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/devflow/pkg/filter"
	"github.com/panbanda/devflow/pkg/models"
)

// Aggregate folds per-file changes into one stat per path. Paths rejected by
// isSource are dropped before folding, so they never reach contributor or
// churn totals. commits must be newest first; ordinals in each stat's Commits
// bitmap index into it. Results are sorted by change count descending, then
// path ascending.
func Aggregate(commits []models.Commit, isSource filter.Predicate) []models.FileChangeStat {
	if isSource == nil {
		isSource = filter.All
	}

	type acc struct {
		stat    *models.FileChangeStat
		authors map[string]struct{}
	}
	byPath := make(map[string]*acc)

	for i, c := range commits {
		for _, f := range c.Files {
			if !isSource(f.Path) {
				continue
			}
			a, ok := byPath[f.Path]
			if !ok {
				a = &acc{
					stat: &models.FileChangeStat{
						Path:    f.Path,
						Commits: roaring.New(),
					},
					authors: make(map[string]struct{}),
				}
				byPath[f.Path] = a
			}
			a.stat.Commits.Add(uint32(i))
			a.stat.Insertions += max(f.Insertions, 0)
			a.stat.Deletions += max(f.Deletions, 0)
			a.authors[c.Author] = struct{}{}
			if c.Timestamp.After(a.stat.LastModified) {
				a.stat.LastModified = c.Timestamp
			}
		}
	}

	out := make([]models.FileChangeStat, 0, len(byPath))
	for _, a := range byPath {
		a.stat.ChangeCount = int(a.stat.Commits.GetCardinality())
		a.stat.Contributors = make([]string, 0, len(a.authors))
		for name := range a.authors {
			a.stat.Contributors = append(a.stat.Contributors, name)
		}
		sort.Strings(a.stat.Contributors)
		out = append(out, *a.stat)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ChangeCount != out[j].ChangeCount {
			return out[i].ChangeCount > out[j].ChangeCount
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Top returns the first k stats, or all of them when k is not positive.
func Top[T any](items []T, k int) []T {
	if k <= 0 || k >= len(items) {
		return items
	}
	return items[:k]
}
