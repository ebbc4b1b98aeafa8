package analysis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/analyzer/hotspot"
	"github.com/panbanda/devflow/pkg/analyzer/insight"
	"github.com/panbanda/devflow/pkg/analyzer/pattern"
	"github.com/panbanda/devflow/pkg/analyzer/productivity"
	"github.com/panbanda/devflow/pkg/models"
)

// Result is one completed pipeline run.
type Result struct {
	Repository   string                   `json:"repository"`
	Head         string                   `json:"head,omitempty"`
	WindowDays   int                      `json:"windowDays"`
	GeneratedAt  time.Time                `json:"generatedAt"`
	FromCache    bool                     `json:"fromCache"`
	Commits      []models.Commit          `json:"-"`
	Patterns     *pattern.Analysis        `json:"patterns"`
	Hotspots     *hotspot.Analysis        `json:"hotspots"`
	Productivity models.ProductivityScore `json:"productivity"`
	Insights     []models.Insight         `json:"insights"`
	Summary      models.InsightSummary    `json:"summary"`
}

// Section names a part of a Result for single-section commands.
type Section string

const (
	SectionPatterns     Section = "patterns"
	SectionHotspots     Section = "hotspots"
	SectionProductivity Section = "productivity"
	SectionInsights     Section = "insights"
)

// Part returns the renderable for one section.
func (r *Result) Part(s Section) output.Renderable {
	switch s {
	case SectionPatterns:
		return r.Patterns
	case SectionHotspots:
		return r.Hotspots
	case SectionProductivity:
		return productivity.NewReport(r.Productivity)
	default:
		return insight.NewReport(r.Insights)
	}
}

func (r *Result) fields() []output.Field {
	head := "none"
	if r.Head != "" {
		head = models.ShortenHash(r.Head)
	}
	fields := []output.Field{
		{Label: "Repository", Value: r.Repository},
		{Label: "Head", Value: head},
		{Label: "Window", Value: fmt.Sprintf("last %d days", r.WindowDays)},
		{Label: "Commits", Value: fmt.Sprintf("%d", len(r.Commits))},
	}
	if r.FromCache {
		fields = append(fields, output.Field{Label: "Source", Value: "cache"})
	}
	return fields
}

// Report renders the given sections, or all of them when none are named.
func (r *Result) Report(sections ...Section) *output.Report {
	if len(sections) == 0 {
		sections = []Section{SectionPatterns, SectionHotspots, SectionProductivity, SectionInsights}
	}
	rep := &output.Report{Title: "DevFlow Analysis", Fields: r.fields()}
	for _, s := range sections {
		rep.Parts = append(rep.Parts, r.Part(s))
	}
	if len(sections) == 1 {
		rep.Data = r.Part(sections[0]).RenderData()
	} else {
		rep.Data = r
	}
	return rep
}

// RenderData, RenderText and RenderMarkdown make a Result a full report.
func (r *Result) RenderData() any {
	return r
}

func (r *Result) RenderText(w io.Writer, colored bool) error {
	return r.Report().RenderText(w, colored)
}

func (r *Result) RenderMarkdown(w io.Writer) error {
	return r.Report().RenderMarkdown(w)
}

// InfoReport renders repository metadata.
func InfoReport(info models.RepositoryInfo) *output.Report {
	branch := info.DefaultBranch
	if branch == "" {
		branch = "none"
	}
	if info.IsDetached {
		branch += " (detached)"
	}
	branches := "none"
	if len(info.Branches) > 0 {
		branches = strings.Join(info.Branches, ", ")
	}
	return &output.Report{
		Title: "Repository",
		Fields: []output.Field{
			{Label: "Path", Value: info.Path},
			{Label: "Branch", Value: branch},
			{Label: "Branches", Value: branches},
			{Label: "Commits", Value: strconv.Itoa(info.TotalCommits)},
			{Label: "Empty", Value: strconv.FormatBool(info.IsEmpty)},
		},
		Data: info,
	}
}
