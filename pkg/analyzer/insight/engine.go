// Package insight evaluates rules over analytics results and reports
// actionable findings.
package insight

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/panbanda/devflow/internal/logging"
	"github.com/panbanda/devflow/pkg/models"
)

// Snapshot is the read-only input every rule sees.
type Snapshot struct {
	Files        []models.FileRisk
	Commits      []models.Commit
	Contributors map[string]int
	Commands     []models.CommandUsage
	// Now stamps generated insights. The engine clock is used when zero.
	Now time.Time
}

// Rule produces zero or more insights from a snapshot. Eval must not
// modify the snapshot.
type Rule struct {
	Name string
	Eval func(Snapshot) []models.Insight
}

// Engine evaluates a fixed set of rules.
type Engine struct {
	rules []Rule
	now   func() time.Time
	log   *logrus.Logger
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithClock overrides the time source used to stamp insights.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used to report failing rules.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine with DefaultRules.
func New(opts ...Option) *Engine {
	e := &Engine{
		rules: DefaultRules(),
		now:   time.Now,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultRules returns every built-in rule in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "critical-risk", Eval: criticalRiskRule},
		{Name: "single-contributor", Eval: singleContributorRule},
		{Name: "rapid-churn", Eval: rapidChurnRule},
		{Name: "peak-hour", Eval: peakHourRule},
		{Name: "peak-day", Eval: peakDayRule},
		{Name: "late-night", Eval: lateNightRule},
		{Name: "low-consistency", Eval: lowConsistencyRule},
		{Name: "low-bus-factor", Eval: lowBusFactorRule},
		{Name: "unstable-modules", Eval: unstableModulesRule},
		{Name: "contributor-overload", Eval: contributorOverloadRule},
		{Name: "reset-rebase", Eval: resetRebaseRule},
		{Name: "testing", Eval: testingRule},
		{Name: "rollbacks", Eval: rollbackRule},
	}
}

// SelectRules keeps the default rules whose names are listed. An empty list
// keeps all of them.
func SelectRules(names []string) ([]Rule, error) {
	all := DefaultRules()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Rule, len(all))
	for _, r := range all {
		byName[r.Name] = r
	}
	selected := make([]Rule, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown insight rule %q", name)
		}
		selected = append(selected, r)
	}
	return selected, nil
}

// RuleNames lists the names of the default rules.
func RuleNames() []string {
	rules := DefaultRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// Generate evaluates every rule independently. A rule that panics is
// skipped and logged; the remaining rules still run.
func (e *Engine) Generate(s Snapshot) []models.Insight {
	if s.Contributors == nil {
		s.Contributors = ContributorCounts(s.Commits)
	}
	stamp := s.Now
	if stamp.IsZero() {
		stamp = e.now()
	}
	stamp = stamp.UTC()

	insights := make([]models.Insight, 0)
	for _, r := range e.rules {
		for _, in := range e.eval(r, s) {
			in.Timestamp = stamp
			insights = append(insights, in)
		}
	}
	return insights
}

func (e *Engine) eval(r Rule, s Snapshot) (out []models.Insight) {
	defer func() {
		if p := recover(); p != nil {
			e.log.WithFields(logrus.Fields{"rule": r.Name, "panic": p}).Warn("insight rule failed")
			out = nil
		}
	}()
	return r.Eval(s)
}

// ContributorCounts counts commits per author.
func ContributorCounts(commits []models.Commit) map[string]int {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.Author]++
	}
	return counts
}

// Summarize counts insights by severity and category. Every known severity
// and category is present, possibly with zero.
func Summarize(insights []models.Insight) models.InsightSummary {
	sum := models.InsightSummary{
		Total: len(insights),
		BySeverity: map[models.Severity]int{
			models.SeverityHigh:   0,
			models.SeverityMedium: 0,
			models.SeverityLow:    0,
		},
		ByType: map[models.Category]int{
			models.CategoryRisk:     0,
			models.CategoryWorkflow: 0,
			models.CategoryHealth:   0,
			models.CategoryCommand:  0,
		},
	}
	for _, in := range insights {
		sum.BySeverity[in.Severity]++
		sum.ByType[in.Type]++
	}
	return sum
}

// Sort orders insights by severity, most urgent first, keeping rule order
// within a severity.
func Sort(insights []models.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Weight() > insights[j].Severity.Weight()
	})
}

// Filter returns insights at or above min severity.
func Filter(insights []models.Insight, min models.Severity) []models.Insight {
	out := make([]models.Insight, 0, len(insights))
	for _, in := range insights {
		if in.Severity.Weight() >= min.Weight() {
			out = append(out, in)
		}
	}
	return out
}

func newInsight(t models.Category, sev models.Severity, title, desc, rec string) models.Insight {
	return models.Insight{
		Type:           t,
		Severity:       sev,
		Title:          title,
		Description:    desc,
		Recommendation: rec,
	}
}
