package insight

import (
	"fmt"
	"io"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/models"
)

// Report renders a list of insights with their summary.
type Report struct {
	Insights []models.Insight      `json:"insights"`
	Summary  models.InsightSummary `json:"summary"`
}

// NewReport sorts the insights by severity and summarizes them.
func NewReport(insights []models.Insight) *Report {
	sorted := make([]models.Insight, len(insights))
	copy(sorted, insights)
	Sort(sorted)
	return &Report{Insights: sorted, Summary: Summarize(sorted)}
}

func (r *Report) RenderData() any {
	return r
}

func (r *Report) table(colored bool) *output.Table {
	rows := make([][]string, 0, len(r.Insights))
	for _, in := range r.Insights {
		sev := in.Severity.String()
		if colored {
			sev = output.SeverityColor(sev, sev)
		}
		rows = append(rows, []string{sev, in.Type.String(), in.Title})
	}
	footer := []string{
		fmt.Sprintf("%d total", r.Summary.Total),
		fmt.Sprintf("%d high", r.Summary.BySeverity[models.SeverityHigh]),
		fmt.Sprintf("%d medium, %d low", r.Summary.BySeverity[models.SeverityMedium], r.Summary.BySeverity[models.SeverityLow]),
	}
	return output.NewTable("Insights", []string{"Severity", "Type", "Title"}, rows, footer, r)
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if err := r.table(colored).RenderText(w, colored); err != nil {
		return err
	}
	for _, in := range r.Insights {
		fmt.Fprintf(w, "\n%s\n  %s\n  -> %s\n", in.Title, in.Description, in.Recommendation)
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if err := r.table(false).RenderMarkdown(w); err != nil {
		return err
	}
	for _, in := range r.Insights {
		fmt.Fprintf(w, "\n### %s\n\n%s\n\n**Recommendation:** %s\n", in.Title, in.Description, in.Recommendation)
	}
	return nil
}
