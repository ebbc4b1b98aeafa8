// Package pattern derives time-distribution and authorship statistics from commits.
package pattern

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/models"
	"github.com/panbanda/devflow/pkg/stats"
)

// DefaultTopAuthors is the leaderboard size used when topN is not positive.
const DefaultTopAuthors = 10

// Weekdays names the ByWeekday buckets, Monday first.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AuthorShare is one leaderboard entry.
type AuthorShare struct {
	Name       string  `json:"name"`
	Commits    int     `json:"commits"`
	Percentage float64 `json:"percentage"`
}

// Analysis holds commit pattern statistics.
type Analysis struct {
	TotalCommits         int           `json:"total_commits"`
	ByWeekday            [7]int        `json:"commits_per_weekday"`
	ByHour               [24]int       `json:"commits_per_hour"`
	TopAuthors           []AuthorShare `json:"top_authors"`
	AverageMessageLength float64       `json:"average_commit_message_length"`
	WorkdayPercentage    float64       `json:"workday_percentage"`
	WeekendPercentage    float64       `json:"weekend_percentage"`
	WorkdayWeekendRatio  float64       `json:"workday_vs_weekend_ratio"`
}

// WeekdayIndex maps a time to its Monday-first bucket.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return WeekdayIndex(t) >= 5
}

// Analyze computes pattern statistics. Timestamps are bucketed in UTC.
func Analyze(commits []models.Commit, topN int) *Analysis {
	if topN <= 0 {
		topN = DefaultTopAuthors
	}
	a := &Analysis{TopAuthors: []AuthorShare{}}
	if len(commits) == 0 {
		return a
	}

	authorCounts := make(map[string]int)
	var messageRunes, weekdays, weekends int
	for _, c := range commits {
		ts := c.Timestamp.UTC()
		day := WeekdayIndex(ts)
		a.ByWeekday[day]++
		a.ByHour[ts.Hour()]++
		authorCounts[c.Author]++
		messageRunes += utf8.RuneCountInString(strings.TrimSpace(c.Message))
		if day < 5 {
			weekdays++
		} else {
			weekends++
		}
	}

	total := float64(len(commits))
	a.TotalCommits = len(commits)
	a.AverageMessageLength = stats.Round1(float64(messageRunes) / total)

	workday := float64(weekdays) / total * 100
	weekend := float64(weekends) / total * 100
	a.WorkdayPercentage = stats.Round1(workday)
	a.WeekendPercentage = stats.Round1(weekend)
	if weekends > 0 {
		a.WorkdayWeekendRatio = stats.Round2(workday / weekend)
	}

	a.TopAuthors = topAuthors(authorCounts, len(commits), topN)
	return a
}

// topAuthors ranks authors by commit count, ties by name.
func topAuthors(counts map[string]int, total, n int) []AuthorShare {
	shares := make([]AuthorShare, 0, len(counts))
	for name, count := range counts {
		shares = append(shares, AuthorShare{
			Name:       name,
			Commits:    count,
			Percentage: stats.Round1(float64(count) / float64(total) * 100),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Commits != shares[j].Commits {
			return shares[i].Commits > shares[j].Commits
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// PeakHour returns the earliest hour with the maximal count.
func (a *Analysis) PeakHour() (hour, count int) {
	for h, c := range a.ByHour {
		if c > count {
			hour, count = h, c
		}
	}
	return hour, count
}

// PeakWeekday returns the first weekday (Monday-first) with the maximal count.
func (a *Analysis) PeakWeekday() (day, count int) {
	for d, c := range a.ByWeekday {
		if c > count {
			day, count = d, c
		}
	}
	return day, count
}

func (a *Analysis) RenderData() any {
	return a
}

func (a *Analysis) table() *output.Table {
	rows := [][]string{
		{"Total commits", fmt.Sprintf("%d", a.TotalCommits)},
		{"Workday", fmt.Sprintf("%.1f%%", a.WorkdayPercentage)},
		{"Weekend", fmt.Sprintf("%.1f%%", a.WeekendPercentage)},
		{"Workday/weekend ratio", fmt.Sprintf("%.2f", a.WorkdayWeekendRatio)},
		{"Avg message length", fmt.Sprintf("%.1f", a.AverageMessageLength)},
	}
	if a.TotalCommits > 0 {
		h, hc := a.PeakHour()
		d, dc := a.PeakWeekday()
		rows = append(rows,
			[]string{"Peak hour", fmt.Sprintf("%02d:00 (%d commits)", h, hc)},
			[]string{"Peak day", fmt.Sprintf("%s (%d commits)", Weekdays[d], dc)},
		)
	}
	return output.NewTable("Commit Patterns", []string{"Metric", "Value"}, rows, nil, a)
}

func (a *Analysis) authorTable() *output.Table {
	rows := make([][]string, 0, len(a.TopAuthors))
	for _, s := range a.TopAuthors {
		rows = append(rows, []string{s.Name, fmt.Sprintf("%d", s.Commits), fmt.Sprintf("%.1f%%", s.Percentage)})
	}
	return output.NewTable("Top Authors", []string{"Author", "Commits", "Share"}, rows, nil, a.TopAuthors)
}

func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	if err := a.table().RenderText(w, colored); err != nil {
		return err
	}
	if len(a.TopAuthors) == 0 {
		return nil
	}
	return a.authorTable().RenderText(w, colored)
}

func (a *Analysis) RenderMarkdown(w io.Writer) error {
	if err := a.table().RenderMarkdown(w); err != nil {
		return err
	}
	if len(a.TopAuthors) == 0 {
		return nil
	}
	return a.authorTable().RenderMarkdown(w)
}
