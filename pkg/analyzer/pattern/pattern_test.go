package pattern

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/devflow/pkg/models"
)

// 2024-01-01 is a Monday.
func at(day, hour int) time.Time {
	return time.Date(2024, 1, 1+day, hour, 0, 0, 0, time.UTC)
}

func commit(author string, ts time.Time, msg string) models.Commit {
	return models.Commit{Author: author, Timestamp: ts, Message: msg}
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil, 10)
	assert.Equal(t, 0, a.TotalCommits)
	assert.Equal(t, [7]int{}, a.ByWeekday)
	assert.Equal(t, [24]int{}, a.ByHour)
	assert.Empty(t, a.TopAuthors)
	assert.NotNil(t, a.TopAuthors)
	assert.Equal(t, 0.0, a.AverageMessageLength)
	assert.Equal(t, 0.0, a.WorkdayWeekendRatio)
}

func TestAnalyze_Buckets(t *testing.T) {
	commits := []models.Commit{
		commit("alice", at(0, 9), "feat: one"),     // Monday
		commit("alice", at(0, 9), "fix: two"),      // Monday
		commit("bob", at(2, 14), "docs"),           // Wednesday
		commit("carol", at(5, 23), "weekend fix"),  // Saturday
		commit("alice", at(6, 0), "sunday change"), // Sunday
	}

	a := Analyze(commits, 10)
	assert.Equal(t, 5, a.TotalCommits)
	assert.Equal(t, [7]int{2, 0, 1, 0, 0, 1, 1}, a.ByWeekday)
	assert.Equal(t, 2, a.ByHour[9])
	assert.Equal(t, 1, a.ByHour[14])
	assert.Equal(t, 1, a.ByHour[23])
	assert.Equal(t, 1, a.ByHour[0])

	assert.Equal(t, 60.0, a.WorkdayPercentage)
	assert.Equal(t, 40.0, a.WeekendPercentage)
	assert.Equal(t, 1.5, a.WorkdayWeekendRatio)

	// 9 + 8 + 4 + 11 + 13 = 45 / 5
	assert.Equal(t, 9.0, a.AverageMessageLength)

	require.Len(t, a.TopAuthors, 3)
	assert.Equal(t, AuthorShare{Name: "alice", Commits: 3, Percentage: 60}, a.TopAuthors[0])
	assert.Equal(t, "bob", a.TopAuthors[1].Name)
	assert.Equal(t, "carol", a.TopAuthors[2].Name)
}

func TestAnalyze_BucketsSumToTotal(t *testing.T) {
	var commits []models.Commit
	for i := 0; i < 100; i++ {
		commits = append(commits, commit("dev", at(i%7, (i*5)%24), "x"))
	}
	a := Analyze(commits, 0)

	sumDays, sumHours := 0, 0
	for _, c := range a.ByWeekday {
		sumDays += c
	}
	for _, c := range a.ByHour {
		sumHours += c
	}
	assert.Equal(t, 100, sumDays)
	assert.Equal(t, 100, sumHours)
	assert.InDelta(t, 100.0, a.WorkdayPercentage+a.WeekendPercentage, 0.11)
}

func TestAnalyze_NoWeekendRatioIsZero(t *testing.T) {
	a := Analyze([]models.Commit{commit("a", at(1, 10), "x")}, 10)
	assert.Equal(t, 100.0, a.WorkdayPercentage)
	assert.Equal(t, 0.0, a.WorkdayWeekendRatio)
}

func TestAnalyze_TopNTruncatesAndRounds(t *testing.T) {
	commits := []models.Commit{
		commit("a", at(0, 1), "x"),
		commit("b", at(0, 1), "x"),
		commit("c", at(0, 1), "x"),
	}
	a := Analyze(commits, 2)
	require.Len(t, a.TopAuthors, 2)
	assert.Equal(t, "a", a.TopAuthors[0].Name)
	assert.Equal(t, 33.3, a.TopAuthors[0].Percentage)
}

func TestAnalyze_ConvertsToUTC(t *testing.T) {
	tz := time.FixedZone("UTC+3", 3*3600)
	// Monday 01:00 at +03:00 is Sunday 22:00 UTC.
	ts := time.Date(2024, 1, 8, 1, 0, 0, 0, tz)
	a := Analyze([]models.Commit{commit("a", ts, "x")}, 10)
	assert.Equal(t, 1, a.ByWeekday[6])
	assert.Equal(t, 1, a.ByHour[22])
}

func TestPeaks_EarliestWins(t *testing.T) {
	a := Analyze([]models.Commit{
		commit("a", at(1, 15), "x"),
		commit("a", at(3, 8), "x"),
	}, 10)

	h, hc := a.PeakHour()
	assert.Equal(t, 8, h)
	assert.Equal(t, 1, hc)

	d, dc := a.PeakWeekday()
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, dc)
}

func TestAnalysis_Render(t *testing.T) {
	a := Analyze([]models.Commit{commit("alice", at(0, 9), "feat: x")}, 10)

	var text bytes.Buffer
	require.NoError(t, a.RenderText(&text, false))
	assert.Contains(t, text.String(), "Commit Patterns")
	assert.Contains(t, text.String(), "alice")

	var md bytes.Buffer
	require.NoError(t, a.RenderMarkdown(&md))
	assert.True(t, strings.HasPrefix(md.String(), "## Commit Patterns"))
	assert.Contains(t, md.String(), "| alice | 1 | 100.0% |")
}
