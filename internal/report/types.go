package report

import "github.com/panbanda/devflow/internal/export"

// RenderData contains all data needed to render the report.
type RenderData struct {
	Title        string
	Productivity export.ProductivitySummary
	GradeClass   string
	Hotspots     *export.FileHotspots
	Insights     *export.Insights
	Commits      *export.CommitAnalytics
	Heatmap      [][]export.HeatmapCell
	HeatmapMax   int
	SparklineMax int
}

// heatmapRows groups cells by week, oldest week first.
func heatmapRows(cells []export.HeatmapCell) ([][]export.HeatmapCell, int) {
	var rows [][]export.HeatmapCell
	maxCount := 0
	for _, cell := range cells {
		for len(rows) <= cell.Week {
			rows = append(rows, nil)
		}
		rows[cell.Week] = append(rows[cell.Week], cell)
		if cell.Count > maxCount {
			maxCount = cell.Count
		}
	}
	return rows, maxCount
}

func sparklineMax(points []export.SparklinePoint) int {
	maxCount := 0
	for _, p := range points {
		if p.Commits > maxCount {
			maxCount = p.Commits
		}
	}
	return maxCount
}
