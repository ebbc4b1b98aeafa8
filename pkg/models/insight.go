package models

import "time"

// Category groups insights by the rule family that produced them.
type Category string

const (
	CategoryRisk     Category = "risk"
	CategoryWorkflow Category = "workflow"
	CategoryHealth   Category = "health"
	CategoryCommand  Category = "command"
)

// Severity is the urgency of an insight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight orders severities; higher is more urgent.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Insight is one actionable finding.
type Insight struct {
	Type           Category  `json:"type"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	Timestamp      time.Time `json:"timestamp"`
}

// InsightSummary counts insights by severity and category.
type InsightSummary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByType     map[Category]int `json:"by_type"`
}
