package hotspot

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/panbanda/devflow/pkg/models"
)

func intp(v int) *int { return &v }

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name         string
		changes      int
		contributors int
		days         *int
		ins, del     int
		want         int
	}{
		{"all zero", 0, 0, nil, 0, 0, 0},
		{"frequency only", 7, 0, nil, 0, 0, 14},
		{"frequency caps at 40", 25, 0, nil, 0, 0, 40},
		{"recency today", 0, 0, intp(0), 0, 0, 30},
		{"recency one day", 0, 0, intp(1), 0, 0, 30},
		{"recency week", 0, 0, intp(7), 0, 0, 20},
		{"recency month", 0, 0, intp(30), 0, 0, 10},
		{"recency old", 0, 0, intp(31), 0, 0, 5},
		{"contributors", 0, 3, nil, 0, 0, 12},
		{"contributors cap", 0, 9, nil, 0, 0, 20},
		{"churn integer division", 0, 0, nil, 150, 49, 1},
		{"churn cap", 0, 0, nil, 5000, 0, 10},
		{"everything maxed", 100, 10, intp(0), 10000, 10000, 100},
		{"mixed", 5, 2, intp(3), 120, 80, 10 + 20 + 8 + 2},
		{"negative inputs", -4, -2, intp(-3), -100, -50, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskScore(tt.changes, tt.contributors, tt.days, tt.ins, tt.del))
		})
	}
}

func randomInt(r *rand.Rand) int {
	switch r.Intn(4) {
	case 0:
		return r.Intn(50)
	case 1:
		return r.Int()
	case 2:
		return -r.Int()
	default:
		return []int{0, 1, math.MaxInt, math.MinInt, math.MaxInt32}[r.Intn(5)]
	}
}

func TestRiskScore_AlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		var days *int
		if r.Intn(3) > 0 {
			days = intp(randomInt(r))
		}
		got := RiskScore(randomInt(r), randomInt(r), days, randomInt(r), randomInt(r))
		if got < 0 || got > 100 {
			t.Fatalf("RiskScore out of range: %d", got)
		}
	}
}

func TestRiskScore_MonotonicInChangeCount(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		contributors := r.Intn(10)
		days := intp(r.Intn(120))
		ins, del := r.Intn(3000), r.Intn(3000)

		prev := -1
		for changes := 0; changes <= 60; changes++ {
			got := RiskScore(changes, contributors, days, ins, del)
			if got < prev {
				t.Fatalf("score decreased at changes=%d: %d < %d", changes, got, prev)
			}
			prev = got
		}
	}
}

func TestRiskScore_RecencyDecay(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		// Keep the total under the clamp so the recency difference is visible.
		changes, contributors := r.Intn(10), r.Intn(3)
		ins, del := r.Intn(400), r.Intn(400)
		recent := RiskScore(changes, contributors, intp(1), ins, del)
		old := RiskScore(changes, contributors, intp(90), ins, del)
		assert.Greater(t, recent, old)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{100, models.RiskCritical},
		{76, models.RiskCritical},
		{75, models.RiskHigh},
		{51, models.RiskHigh},
		{50, models.RiskMedium},
		{26, models.RiskMedium},
		{25, models.RiskLow},
		{0, models.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score), "score %d", tt.score)
	}
}

func TestScoreFile(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := models.FileChangeStat{
		ChangeCount:  12,
		Contributors: []string{"a", "b"},
		Insertions:   300,
		Deletions:    50,
		LastModified: now.Add(-36 * time.Hour),
	}
	// 24 + 30 + 8 + 3
	assert.Equal(t, 65, ScoreFile(s, now))

	s.LastModified = time.Time{}
	assert.Equal(t, 35, ScoreFile(s, now))
}
