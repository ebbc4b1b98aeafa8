// Package export writes analysis results as stable JSON documents for
// dashboards, validating each against an embedded schema.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/panbanda/devflow/internal/service/analysis"
	"github.com/panbanda/devflow/pkg/analyzer/hotspot"
	"github.com/panbanda/devflow/pkg/analyzer/pattern"
	"github.com/panbanda/devflow/pkg/models"
)

// Document file names.
const (
	ProductivityFile = "productivity-summary.json"
	HotspotsFile     = "file-hotspots.json"
	InsightsFile     = "insights.json"
	CommitsFile      = "commit-analytics.json"
)

// SparklineDays is the length of the daily commit sparkline.
const SparklineDays = 14

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ProductivitySummary is productivity-summary.json.
type ProductivitySummary struct {
	ProductivityScore ProductivityRecord `json:"productivityScore"`
	SparklineData     []SparklinePoint   `json:"sparklineData"`
	GeneratedAt       string             `json:"generated_at"`
}

// ProductivityRecord is the exported productivity score.
type ProductivityRecord struct {
	Current           float64                    `json:"current"`
	Grade             models.Grade               `json:"grade"`
	FrequencyScore    float64                    `json:"frequencyScore"`
	QualityScore      float64                    `json:"qualityScore"`
	DistributionScore float64                    `json:"distributionScore"`
	Period            string                     `json:"period"`
	Metrics           models.ProductivityMetrics `json:"metrics"`
	Insights          []string                   `json:"insights"`
}

// SparklinePoint is one day of commit counts.
type SparklinePoint struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Commits int    `json:"commits"`
}

// FileHotspots is file-hotspots.json.
type FileHotspots struct {
	FileRiskData []FileRiskRecord `json:"fileRiskData"`
	GeneratedAt  string           `json:"generated_at"`
	DaysAnalyzed int              `json:"days_analyzed"`
}

// FileRiskRecord carries the stable per-file fields.
type FileRiskRecord struct {
	Path                string `json:"path"`
	RiskScore           int    `json:"riskScore"`
	ChangeCount         int    `json:"changeCount"`
	Contributors        int    `json:"contributors"`
	Language            string `json:"language"`
	LastModifiedDaysAgo int    `json:"lastModifiedDaysAgo"`
}

// Insights is insights.json.
type Insights struct {
	Insights     []models.Insight      `json:"insights"`
	Summary      models.InsightSummary `json:"summary"`
	GeneratedAt  string                `json:"generated_at"`
	DaysAnalyzed int                   `json:"days_analyzed"`
}

// CommitAnalytics is commit-analytics.json.
type CommitAnalytics struct {
	HeatmapData  []HeatmapCell `json:"heatmapData"`
	GeneratedAt  string        `json:"generated_at"`
	DaysAnalyzed int           `json:"days_analyzed"`
}

// HeatmapCell is one day in a week-by-weekday grid. Day 0 is the oldest day
// of its week.
type HeatmapCell struct {
	Week  int    `json:"week"`
	Day   int    `json:"day"`
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// Bundle holds every exported document.
type Bundle struct {
	Productivity ProductivitySummary
	Hotspots     FileHotspots
	Insights     Insights
	Commits      CommitAnalytics
}

type buildConfig struct {
	top int
}

// Option configures Build.
type Option func(*buildConfig)

// WithTop limits exported hotspots. Non-positive keeps hotspot.DefaultTop.
func WithTop(k int) Option {
	return func(c *buildConfig) {
		if k > 0 {
			c.top = k
		}
	}
}

// Build maps a run to the export documents.
func Build(res *analysis.Result, opts ...Option) *Bundle {
	cfg := &buildConfig{top: hotspot.DefaultTop}
	for _, opt := range opts {
		opt(cfg)
	}
	now := res.GeneratedAt.UTC()
	stamp := now.Format(time.RFC3339)
	daily := dailyCounts(res.Commits)

	p := res.Productivity
	insights := p.Insights
	if insights == nil {
		insights = []string{}
	}
	b := &Bundle{
		Productivity: ProductivitySummary{
			ProductivityScore: ProductivityRecord{
				Current:           p.Score,
				Grade:             p.Grade,
				FrequencyScore:    p.FrequencyScore,
				QualityScore:      p.QualityScore,
				DistributionScore: p.DistributionScore,
				Period:            fmt.Sprintf("%dd", res.WindowDays),
				Metrics:           p.Metrics,
				Insights:          insights,
			},
			SparklineData: sparkline(daily, now, SparklineDays),
			GeneratedAt:   stamp,
		},
		Hotspots: FileHotspots{
			FileRiskData: fileRecords(res.Hotspots.Top(cfg.top)),
			GeneratedAt:  stamp,
			DaysAnalyzed: res.WindowDays,
		},
		Insights: Insights{
			Insights:     res.Insights,
			Summary:      res.Summary,
			GeneratedAt:  stamp,
			DaysAnalyzed: res.WindowDays,
		},
		Commits: CommitAnalytics{
			HeatmapData:  heatmap(daily, now, (res.WindowDays+6)/7),
			GeneratedAt:  stamp,
			DaysAnalyzed: res.WindowDays,
		},
	}
	if b.Insights.Insights == nil {
		b.Insights.Insights = []models.Insight{}
	}
	return b
}

func fileRecords(files []models.FileRisk) []FileRiskRecord {
	records := make([]FileRiskRecord, len(files))
	for i, f := range files {
		records[i] = FileRiskRecord{
			Path:                f.Path,
			RiskScore:           f.RiskScore,
			ChangeCount:         f.ChangeCount,
			Contributors:        f.Contributors,
			Language:            f.Language,
			LastModifiedDaysAgo: f.LastModifiedDaysAgo,
		}
	}
	return records
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func dailyCounts(commits []models.Commit) map[string]int {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[dateKey(c.Timestamp)]++
	}
	return counts
}

func sparkline(daily map[string]int, now time.Time, days int) []SparklinePoint {
	points := make([]SparklinePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		points = append(points, SparklinePoint{
			Day:     dayNames[pattern.WeekdayIndex(d)],
			Date:    dateKey(d),
			Commits: daily[dateKey(d)],
		})
	}
	return points
}

func heatmap(daily map[string]int, now time.Time, weeks int) []HeatmapCell {
	weeks = max(weeks, 1)
	cells := make([]HeatmapCell, 0, weeks*7)
	for w := weeks - 1; w >= 0; w-- {
		for d := 0; d < 7; d++ {
			date := now.AddDate(0, 0, -(w*7 + 6 - d))
			cells = append(cells, HeatmapCell{
				Week:  weeks - 1 - w,
				Day:   d,
				Count: daily[dateKey(date)],
				Date:  dateKey(date),
			})
		}
	}
	return cells
}

// Write validates and writes every document in b to dir, creating it when
// needed. Nothing is written if any document fails validation.
func Write(dir string, b *Bundle) ([]string, error) {
	docs := []struct {
		name string
		v    any
	}{
		{ProductivityFile, b.Productivity},
		{HotspotsFile, b.Hotspots},
		{InsightsFile, b.Insights},
		{CommitsFile, b.Commits},
	}

	encoded := make([][]byte, len(docs))
	for i, d := range docs {
		data, err := Encode(d.name, d.v)
		if err != nil {
			return nil, err
		}
		encoded[i] = data
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	written := make([]string, 0, len(docs))
	for i, d := range docs {
		path := filepath.Join(dir, d.name)
		if err := os.WriteFile(path, encoded[i], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", d.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
