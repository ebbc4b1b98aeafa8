// Package hotspot aggregates per-file change history and scores file risk.
package hotspot

import (
	"fmt"
	"io"
	"time"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/filter"
	"github.com/panbanda/devflow/pkg/models"
	"github.com/panbanda/devflow/pkg/stats"
)

// DefaultTop is the number of files shown when rendering.
const DefaultTop = 10

// Summary provides aggregate statistics for hotspot analysis.
type Summary struct {
	TotalFiles    int     `json:"total_files"`
	TotalChanges  int     `json:"total_changes"`
	MeanRisk      float64 `json:"mean_risk"`
	P50Risk       float64 `json:"p50_risk"`
	P95Risk       float64 `json:"p95_risk"`
	MaxRisk       int     `json:"max_risk"`
	CriticalFiles int     `json:"critical_files"`
}

// Analysis is the full hotspot result. Files are ordered like Aggregate.
type Analysis struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Files       []models.FileRisk       `json:"files"`
	Stats       []models.FileChangeStat `json:"-"`
	Summary     Summary                 `json:"summary"`
	top         int
}

type config struct {
	isSource filter.Predicate
	top      int
}

// Option is a functional option for Analyze.
type Option func(*config)

// WithFilter sets the source predicate. Defaults to filter.IsSourceFile.
func WithFilter(p filter.Predicate) Option {
	return func(c *config) {
		if p != nil {
			c.isSource = p
		}
	}
}

// WithTop limits how many files are rendered. Zero renders all.
func WithTop(k int) Option {
	return func(c *config) {
		if k >= 0 {
			c.top = k
		}
	}
}

// Analyze aggregates commits and scores every file as of now.
func Analyze(commits []models.Commit, now time.Time, opts ...Option) *Analysis {
	cfg := config{isSource: filter.IsSourceFile, top: DefaultTop}
	for _, opt := range opts {
		opt(&cfg)
	}

	fileStats := Aggregate(commits, cfg.isSource)
	a := &Analysis{
		GeneratedAt: now.UTC(),
		Files:       make([]models.FileRisk, 0, len(fileStats)),
		Stats:       fileStats,
		top:         cfg.top,
	}

	scores := make([]int, 0, len(fileStats))
	for _, s := range fileStats {
		risk := ScoreFile(s, now)
		daysAgo := models.UnknownDaysAgo
		if d := s.DaysSinceModified(now); d != nil {
			daysAgo = *d
		}
		a.Files = append(a.Files, models.FileRisk{
			Path:                s.Path,
			RiskScore:           risk,
			RiskLevel:           RiskLevel(risk),
			ChangeCount:         s.ChangeCount,
			Contributors:        s.ContributorCount(),
			Language:            filter.Language(s.Path),
			LastModifiedDaysAgo: daysAgo,
			Insertions:          s.Insertions,
			Deletions:           s.Deletions,
		})
		scores = append(scores, risk)

		a.Summary.TotalChanges += s.ChangeCount
		if risk > a.Summary.MaxRisk {
			a.Summary.MaxRisk = risk
		}
		if a.Files[len(a.Files)-1].RiskLevel == models.RiskCritical {
			a.Summary.CriticalFiles++
		}
	}

	a.Summary.TotalFiles = len(a.Files)
	if len(scores) > 0 {
		a.Summary.MeanRisk = stats.Round1(stats.Mean(stats.Floats(scores)))
		a.Summary.P50Risk = stats.PercentileInts(scores, 50)
		a.Summary.P95Risk = stats.PercentileInts(scores, 95)
	}
	return a
}

// Top returns the k highest-ranked files, or all when k is not positive.
func (a *Analysis) Top(k int) []models.FileRisk {
	return Top(a.Files, k)
}

func (a *Analysis) RenderData() any {
	return a
}

func (a *Analysis) table(colored bool) *output.Table {
	files := a.Top(a.top)
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		level := f.RiskLevel.String()
		if colored {
			level = output.SeverityColor(level, level)
		}
		last := "unknown"
		if f.LastModifiedDaysAgo >= 0 {
			last = fmt.Sprintf("%dd ago", f.LastModifiedDaysAgo)
		}
		rows = append(rows, []string{
			f.Path,
			fmt.Sprintf("%d", f.RiskScore),
			level,
			fmt.Sprintf("%d", f.ChangeCount),
			fmt.Sprintf("%d", f.Contributors),
			f.Language,
			last,
		})
	}
	footer := []string{
		fmt.Sprintf("%d files", a.Summary.TotalFiles),
		fmt.Sprintf("max %d", a.Summary.MaxRisk),
		fmt.Sprintf("%d critical", a.Summary.CriticalFiles),
		fmt.Sprintf("%d", a.Summary.TotalChanges),
		"", "", "",
	}
	return output.NewTable("File Hotspots",
		[]string{"Path", "Risk", "Level", "Changes", "Contributors", "Language", "Last Change"},
		rows, footer, a)
}

func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	return a.table(colored).RenderText(w, colored)
}

func (a *Analysis) RenderMarkdown(w io.Writer) error {
	return a.table(false).RenderMarkdown(w)
}
