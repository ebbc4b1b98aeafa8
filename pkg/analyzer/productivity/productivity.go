// Package productivity combines commit frequency, message quality and timing
// into a single graded score.
package productivity

import (
	"time"

	"github.com/panbanda/devflow/pkg/analyzer/pattern"
	"github.com/panbanda/devflow/pkg/analyzer/quality"
	"github.com/panbanda/devflow/pkg/models"
	"github.com/panbanda/devflow/pkg/stats"
)

// Work hours are 09:00 through 17:59 UTC, Monday to Friday.
const (
	WorkHourStart = 9
	WorkHourEnd   = 17
)

// Insight messages attached to a score.
const (
	InsightNoCommits       = "No commits found in analysis period"
	InsightLowFrequency    = "Consider increasing commit frequency"
	InsightLowQuality      = "Improve commit message quality with conventional commits"
	InsightLateNight       = "High late-night activity detected"
	InsightUnusualSchedule = "Unusual commit time distribution"
	InsightHealthy         = "Great productivity patterns!"
)

// IsWorkHour reports whether t falls in work hours on a weekday.
func IsWorkHour(t time.Time) bool {
	t = t.UTC()
	h := t.Hour()
	return !pattern.IsWeekend(t) && h >= WorkHourStart && h <= WorkHourEnd
}

// FrequencyScore scores average commits per day (0-40).
func FrequencyScore(avgDaily float64) float64 {
	switch {
	case avgDaily >= 3:
		return 40
	case avgDaily >= 1:
		return 30
	case avgDaily >= 0.5:
		return 20
	default:
		return 10
	}
}

// DistributionScore scores the share of commits made in work hours (0-30).
// Both too little and too much concentration score lower.
func DistributionScore(workHourRatio float64) float64 {
	switch {
	case workHourRatio >= 0.5 && workHourRatio <= 0.8:
		return 30
	case workHourRatio >= 0.3 && workHourRatio <= 0.9:
		return 20
	default:
		return 10
	}
}

// Calculate scores commits from a window of days. A non-positive window is
// treated as one day.
func Calculate(commits []models.Commit, days int) models.ProductivityScore {
	if days <= 0 {
		days = 1
	}
	if len(commits) == 0 {
		return models.ProductivityScore{
			Grade:      models.GradeNA,
			Insights:   []string{InsightNoCommits},
			WindowDays: days,
		}
	}

	activeDays := make(map[string]struct{})
	scores := make([]float64, 0, len(commits))
	workHourCommits := 0
	for _, c := range commits {
		activeDays[c.Timestamp.UTC().Format(time.DateOnly)] = struct{}{}
		scores = append(scores, float64(quality.Score(c.Message)))
		if IsWorkHour(c.Timestamp) {
			workHourCommits++
		}
	}

	avgDaily := float64(len(commits)) / float64(days)
	avgQuality := stats.Mean(scores)
	workRatio := stats.SafeRatio(float64(workHourCommits), float64(len(commits)))

	frequency := FrequencyScore(avgDaily)
	qualityPts := avgQuality / 100 * 30
	distribution := DistributionScore(workRatio)
	total := frequency + qualityPts + distribution

	var insights []string
	if avgDaily < 1 {
		insights = append(insights, InsightLowFrequency)
	}
	if avgQuality < 50 {
		insights = append(insights, InsightLowQuality)
	}
	if workRatio > 0.9 {
		insights = append(insights, InsightLateNight)
	}
	if workRatio < 0.3 {
		insights = append(insights, InsightUnusualSchedule)
	}
	if len(insights) == 0 {
		insights = append(insights, InsightHealthy)
	}

	return models.ProductivityScore{
		Score:             stats.Round1(total),
		Grade:             models.GradeFromScore(total),
		FrequencyScore:    stats.Round1(frequency),
		QualityScore:      stats.Round1(qualityPts),
		DistributionScore: stats.Round1(distribution),
		Metrics: models.ProductivityMetrics{
			TotalCommits:        len(commits),
			ActiveDays:          len(activeDays),
			AverageDailyCommits: stats.Round2(avgDaily),
			AverageQuality:      stats.Round1(avgQuality),
			WorkHourPercentage:  stats.Round1(workRatio * 100),
		},
		Insights:   insights,
		WindowDays: days,
	}
}
