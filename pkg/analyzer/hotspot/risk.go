package hotspot

import (
	"time"

	"github.com/panbanda/devflow/pkg/models"
)

// Term caps of the risk formula. They sum to 100.
const (
	MaxFrequencyPoints   = 40
	MaxRecencyPoints     = 30
	MaxContributorPoints = 20
	MaxChurnPoints       = 10
)

// RiskScore scores a file 0-100 from how often, how recently and by how many
// people it changed, plus its line churn.
//
// daysSince is nil when the last change is unknown. Negative inputs count as
// zero and large inputs saturate at each term's cap.
func RiskScore(changeCount, contributorCount int, daysSince *int, insertions, deletions int) int {
	score := frequencyPoints(changeCount) +
		recencyPoints(daysSince) +
		contributorPoints(contributorCount) +
		churnPoints(insertions, deletions)
	return clamp(score, 0, 100)
}

func frequencyPoints(changes int) int {
	if changes <= 0 {
		return 0
	}
	if changes >= MaxFrequencyPoints/2 {
		return MaxFrequencyPoints
	}
	return changes * 2
}

func recencyPoints(daysSince *int) int {
	if daysSince == nil {
		return 0
	}
	switch d := *daysSince; {
	case d <= 1:
		return 30
	case d <= 7:
		return 20
	case d <= 30:
		return 10
	default:
		return 5
	}
}

func contributorPoints(contributors int) int {
	if contributors <= 0 {
		return 0
	}
	if contributors >= MaxContributorPoints/4 {
		return MaxContributorPoints
	}
	return contributors * 4
}

func churnPoints(insertions, deletions int) int {
	insertions = max(insertions, 0)
	deletions = max(deletions, 0)
	limit := MaxChurnPoints * 100
	if insertions >= limit || deletions >= limit {
		return MaxChurnPoints
	}
	return min(MaxChurnPoints, (insertions+deletions)/100)
}

// ScoreFile scores one aggregated file as of now.
func ScoreFile(s models.FileChangeStat, now time.Time) int {
	return RiskScore(s.ChangeCount, s.ContributorCount(), s.DaysSinceModified(now), s.Insertions, s.Deletions)
}

// RiskLevel buckets a score: critical above 75, high above 50, medium above 25.
func RiskLevel(score int) models.RiskLevel {
	switch {
	case score > 75:
		return models.RiskCritical
	case score > 50:
		return models.RiskHigh
	case score > 25:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
