package models

import (
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// FileChangeStat aggregates every change to one path within the analysis window.
type FileChangeStat struct {
	Path        string `json:"path"`
	ChangeCount int    `json:"change_count"`
	Insertions  int    `json:"insertions"`
	Deletions   int    `json:"deletions"`
	// Commits holds ordinals into the newest-first commit slice the stat was
	// folded from, so the minimum is the most recent change.
	Commits      *roaring.Bitmap `json:"-"`
	Contributors []string        `json:"contributors"`
	LastModified time.Time       `json:"last_modified"`
}

// ContributorCount returns the number of distinct authors.
func (s FileChangeStat) ContributorCount() int {
	return len(s.Contributors)
}

// Churn returns insertions plus deletions.
func (s FileChangeStat) Churn() int {
	return s.Insertions + s.Deletions
}

// DaysSinceModified returns whole days between the last change and now,
// or nil when the last change is unknown.
func (s FileChangeStat) DaysSinceModified(now time.Time) *int {
	if s.LastModified.IsZero() {
		return nil
	}
	days := int(math.Floor(now.Sub(s.LastModified).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// FileRisk is the exported per-file hotspot record.
type FileRisk struct {
	Path                string    `json:"path"`
	RiskScore           int       `json:"riskScore"`
	RiskLevel           RiskLevel `json:"-"`
	ChangeCount         int       `json:"changeCount"`
	Contributors        int       `json:"contributors"`
	Language            string    `json:"language"`
	LastModifiedDaysAgo int       `json:"lastModifiedDaysAgo"`
	Insertions          int       `json:"insertions"`
	Deletions           int       `json:"deletions"`
}

// UnknownDaysAgo marks a FileRisk whose last modification is unknown.
const UnknownDaysAgo = -1
