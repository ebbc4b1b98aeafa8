package models

// Grade is a letter grade for a productivity score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeNA    Grade = "N/A"
)

// GradeFromScore maps a 0-100 score to a letter grade.
func GradeFromScore(score float64) Grade {
	switch {
	case score >= 90:
		return GradeAPlus
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 60:
		return GradeC
	default:
		return GradeD
	}
}

// ProductivityMetrics are the raw inputs behind a ProductivityScore.
type ProductivityMetrics struct {
	TotalCommits        int     `json:"totalCommits"`
	ActiveDays          int     `json:"activeDays"`
	AverageDailyCommits float64 `json:"averageDailyCommits"`
	AverageQuality      float64 `json:"averageQuality"`
	WorkHourPercentage  float64 `json:"workHourPercentage"`
}

// ProductivityScore is the composite productivity result for a window.
type ProductivityScore struct {
	Score             float64             `json:"score"`
	Grade             Grade               `json:"grade"`
	FrequencyScore    float64             `json:"frequencyScore"`
	QualityScore      float64             `json:"qualityScore"`
	DistributionScore float64             `json:"distributionScore"`
	Metrics           ProductivityMetrics `json:"metrics"`
	Insights          []string            `json:"insights"`
	WindowDays        int                 `json:"windowDays"`
}
