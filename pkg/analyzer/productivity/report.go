package productivity

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/models"
)

// Report renders a ProductivityScore.
type Report struct {
	Score models.ProductivityScore
}

// NewReport wraps a score for rendering.
func NewReport(s models.ProductivityScore) *Report {
	return &Report{Score: s}
}

func (r *Report) RenderData() any {
	return r.Score
}

func (r *Report) table() *output.Table {
	s := r.Score
	rows := [][]string{
		{"Score", fmt.Sprintf("%.1f / 100", s.Score)},
		{"Grade", s.Grade.String()},
		{"Frequency", fmt.Sprintf("%.1f / 40", s.FrequencyScore)},
		{"Quality", fmt.Sprintf("%.1f / 30", s.QualityScore)},
		{"Distribution", fmt.Sprintf("%.1f / 30", s.DistributionScore)},
		{"Commits", fmt.Sprintf("%d in %d days (%d active)", s.Metrics.TotalCommits, s.WindowDays, s.Metrics.ActiveDays)},
		{"Avg daily commits", fmt.Sprintf("%.2f", s.Metrics.AverageDailyCommits)},
		{"Avg message quality", fmt.Sprintf("%.1f", s.Metrics.AverageQuality)},
		{"Work-hour commits", fmt.Sprintf("%.1f%%", s.Metrics.WorkHourPercentage)},
	}
	return output.NewTable("Productivity", []string{"Metric", "Value"}, rows, nil, s)
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if err := r.table().RenderText(w, colored); err != nil {
		return err
	}
	for _, msg := range r.Score.Insights {
		if colored {
			color.New(color.FgCyan).Fprintf(w, "  * %s\n", msg)
		} else {
			fmt.Fprintf(w, "  * %s\n", msg)
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if err := r.table().RenderMarkdown(w); err != nil {
		return err
	}
	var b strings.Builder
	for _, msg := range r.Score.Insights {
		fmt.Fprintf(&b, "- %s\n", msg)
	}
	fmt.Fprintln(w, b.String())
	return nil
}
