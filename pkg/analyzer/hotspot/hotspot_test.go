package hotspot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/devflow/pkg/filter"
	"github.com/panbanda/devflow/pkg/models"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func change(path string, ins, del int) models.FileChange {
	return models.FileChange{Path: path, Insertions: ins, Deletions: del}
}

// newest first
func sampleCommits() []models.Commit {
	return []models.Commit{
		{Author: "alice", Timestamp: now.Add(-2 * time.Hour), Files: []models.FileChange{
			change("src/app.go", 10, 2), change("README.md", 50, 0),
		}},
		{Author: "bob", Timestamp: now.AddDate(0, 0, -3), Files: []models.FileChange{
			change("src/app.go", 5, 5), change("src/util.go", 1, 0), change("package-lock.json", 900, 900),
		}},
		{Author: "alice", Timestamp: now.AddDate(0, 0, -10), Files: []models.FileChange{
			change("src/util.go", 3, 1), change("src/app.go", 1, 1),
		}},
		{Author: "carol", Timestamp: now.AddDate(0, 0, -20), Files: []models.FileChange{
			change("lib/b.go", 1, 0), change("lib/a.go", 1, 0),
		}},
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(sampleCommits(), filter.IsSourceFile)
	require.Len(t, got, 4)

	paths := []string{got[0].Path, got[1].Path, got[2].Path, got[3].Path}
	assert.Equal(t, []string{"src/app.go", "src/util.go", "lib/a.go", "lib/b.go"}, paths)

	app := got[0]
	assert.Equal(t, 3, app.ChangeCount)
	assert.Equal(t, 16, app.Insertions)
	assert.Equal(t, 8, app.Deletions)
	assert.Equal(t, []string{"alice", "bob"}, app.Contributors)
	assert.Equal(t, now.Add(-2*time.Hour), app.LastModified)
	assert.Equal(t, uint32(0), app.Commits.Minimum())
	assert.Equal(t, []uint32{0, 1, 2}, app.Commits.ToArray())
}

func TestAggregate_FiltersBeforeFolding(t *testing.T) {
	commits := []models.Commit{
		{Author: "eve", Timestamp: now, Files: []models.FileChange{change("docs/guide.md", 999, 0)}},
		{Author: "dan", Timestamp: now, Files: []models.FileChange{change("main.go", 1, 0)}},
	}
	got := Aggregate(commits, filter.IsSourceFile)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"dan"}, got[0].Contributors)

	all := Aggregate(commits, nil)
	assert.Len(t, all, 2)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, filter.IsSourceFile)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTop(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, Top(items, 2))
	assert.Equal(t, items, Top(items, 0))
	assert.Equal(t, items, Top(items, 10))
}

func TestAnalyze(t *testing.T) {
	a := Analyze(sampleCommits(), now, WithTop(2))
	require.Len(t, a.Files, 4)
	require.Len(t, a.Stats, 4)

	app := a.Files[0]
	assert.Equal(t, "src/app.go", app.Path)
	assert.Equal(t, "go", app.Language)
	assert.Equal(t, 0, app.LastModifiedDaysAgo)
	// 6 + 30 + 8 + 0
	assert.Equal(t, 44, app.RiskScore)
	assert.Equal(t, models.RiskMedium, app.RiskLevel)

	assert.Equal(t, 4, a.Summary.TotalFiles)
	assert.Equal(t, 7, a.Summary.TotalChanges)
	assert.Equal(t, 44, a.Summary.MaxRisk)
	assert.Equal(t, 0, a.Summary.CriticalFiles)
	assert.Len(t, a.Top(2), 2)
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil, now)
	assert.Empty(t, a.Files)
	assert.Equal(t, Summary{}, a.Summary)
}

func TestAnalysis_Render(t *testing.T) {
	a := Analyze(sampleCommits(), now, WithTop(1))

	var buf bytes.Buffer
	require.NoError(t, a.RenderMarkdown(&buf))
	out := buf.String()
	assert.Contains(t, out, "## File Hotspots")
	assert.Contains(t, out, "src/app.go")
	assert.NotContains(t, out, "lib/a.go")

	buf.Reset()
	require.NoError(t, a.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "src/app.go")
}
