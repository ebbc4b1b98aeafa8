package insight

import (
	"fmt"
	"sort"

	"github.com/panbanda/devflow/pkg/analyzer/pattern"
	"github.com/panbanda/devflow/pkg/models"
)

const (
	criticalRiskThreshold    = 75
	busFactorRiskThreshold   = 50
	singleContributorChanges = 10
	rapidChurnDays           = 3
	rapidChurnChanges        = 5
	unstableChanges          = 15
	unstableContributors     = 3
	peakMinimumCommits       = 3
	lateNightShare           = 0.3
	consistencyMinCommits    = 10
	consistencyMinActiveDays = 7
	consistencyMinPerDay     = 2.0
	overloadShare            = 0.6
	resetRebaseShare         = 0.1
	missingTestsMinCommands  = 20
	rareTestsShare           = 0.05
	rollbackShare            = 0.05
)

var testCommands = []string{"npm test", "pytest", "cargo test", "go test", "mvn test"}

// Risk rules.

func criticalRiskRule(s Snapshot) []models.Insight {
	if len(s.Files) == 0 {
		return nil
	}
	top := s.Files[0]
	for _, f := range s.Files[1:] {
		if f.RiskScore > top.RiskScore {
			top = f
		}
	}
	if top.RiskScore <= criticalRiskThreshold {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryRisk, models.SeverityHigh,
		"Critical Risk File Detected",
		fmt.Sprintf("%s has a risk score of %d/100 with %d changes.", top.Path, top.RiskScore, top.ChangeCount),
		"Review this file for refactoring opportunities. Consider breaking it into smaller, more focused modules.",
	)}
}

func singleContributorRule(s Snapshot) []models.Insight {
	var matched []models.FileRisk
	for _, f := range s.Files {
		if f.Contributors <= 1 && f.ChangeCount > singleContributorChanges {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryRisk, models.SeverityMedium,
		"Single Contributor Risk",
		fmt.Sprintf("%d file(s) have only one contributor despite high change frequency. Example: %s", len(matched), matched[0].Path),
		"Encourage code reviews and pair programming on these files to distribute knowledge and reduce bus factor risk.",
	)}
}

func rapidChurnRule(s Snapshot) []models.Insight {
	n := 0
	for _, f := range s.Files {
		days := f.LastModifiedDaysAgo
		if days >= 0 && days <= rapidChurnDays && f.ChangeCount > rapidChurnChanges {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryRisk, models.SeverityMedium,
		"Rapid File Churn Detected",
		fmt.Sprintf("%d file(s) have been changed frequently in the last %d days, indicating possible instability.", n, rapidChurnDays),
		"Review recent changes for potential issues. Consider stabilizing these files before adding new features.",
	)}
}

// Workflow rules.

func peakHourRule(s Snapshot) []models.Insight {
	if len(s.Commits) == 0 {
		return nil
	}
	hour, count := pattern.Analyze(s.Commits, 0).PeakHour()
	if count < peakMinimumCommits {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryWorkflow, models.SeverityLow,
		"Peak Productivity Hour Identified",
		fmt.Sprintf("Most commits occur at %s (%d commits). This appears to be your most productive coding time.", clockHour(hour), count),
		"Protect this time block from meetings and interruptions for focused coding work.",
	)}
}

// clockHour renders a 0-23 hour on a 12-hour clock.
func clockHour(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

func peakDayRule(s Snapshot) []models.Insight {
	if len(s.Commits) == 0 {
		return nil
	}
	day, count := pattern.Analyze(s.Commits, 0).PeakWeekday()
	if count < peakMinimumCommits {
		return nil
	}
	name := pattern.Weekdays[day]
	return []models.Insight{newInsight(models.CategoryWorkflow, models.SeverityLow,
		fmt.Sprintf("%s is Your Most Productive Day", name),
		fmt.Sprintf("%d commits on %ss indicate this is your most productive day of the week.", count, name),
		"Schedule important coding tasks and deep work for this day when possible.",
	)}
}

func isLateNight(hour int) bool {
	return hour >= 22 || hour <= 5
}

func lateNightRule(s Snapshot) []models.Insight {
	if len(s.Commits) == 0 {
		return nil
	}
	late := 0
	for _, c := range s.Commits {
		if isLateNight(c.Timestamp.UTC().Hour()) {
			late++
		}
	}
	share := float64(late) / float64(len(s.Commits))
	if share <= lateNightShare {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryWorkflow, models.SeverityMedium,
		"Late Night Coding Pattern Detected",
		fmt.Sprintf("%d commits (%d%%) occur between 10 PM and 6 AM.", late, int(share*100)),
		"Consider adjusting work schedule for better work-life balance. Late night coding can lead to burnout and lower code quality.",
	)}
}

func lowConsistencyRule(s Snapshot) []models.Insight {
	if len(s.Commits) < consistencyMinCommits {
		return nil
	}
	days := make(map[string]struct{})
	for _, c := range s.Commits {
		days[c.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	if len(days) < consistencyMinActiveDays {
		return nil
	}
	perDay := float64(len(s.Commits)) / float64(len(days))
	if perDay >= consistencyMinPerDay {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryWorkflow, models.SeverityLow,
		"Low Commit Consistency",
		fmt.Sprintf("Average of %.1f commits per active day. Sporadic commit patterns detected.", perDay),
		"Try to maintain a more consistent commit rhythm. Small, frequent commits are easier to review and debug.",
	)}
}

// Health rules.

func lowBusFactorRule(s Snapshot) []models.Insight {
	n := 0
	for _, f := range s.Files {
		if f.Contributors == 1 && f.RiskScore > busFactorRiskThreshold {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryHealth, models.SeverityHigh,
		"Low Bus Factor Warning",
		fmt.Sprintf("%d critical file(s) have only one contributor. Knowledge is concentrated in single developers.", n),
		"Implement mandatory code reviews and encourage pair programming to distribute knowledge across the team.",
	)}
}

func unstableModulesRule(s Snapshot) []models.Insight {
	n := 0
	for _, f := range s.Files {
		if f.ChangeCount > unstableChanges && f.Contributors >= unstableContributors {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryHealth, models.SeverityMedium,
		"Unstable Modules Detected",
		fmt.Sprintf("%d file(s) show high churn with multiple contributors, indicating potential design issues or unclear requirements.", n),
		"Review architecture and requirements for these modules. High churn with many contributors often signals unclear ownership or design flaws.",
	)}
}

func contributorOverloadRule(s Snapshot) []models.Insight {
	if len(s.Contributors) <= 1 {
		return nil
	}
	total := 0
	names := make([]string, 0, len(s.Contributors))
	for name, n := range s.Contributors {
		total += n
		names = append(names, name)
	}
	if total == 0 {
		return nil
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Contributors[names[i]], s.Contributors[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		share := float64(s.Contributors[name]) / float64(total)
		if share > overloadShare {
			return []models.Insight{newInsight(models.CategoryHealth, models.SeverityMedium,
				"Contributor Overload Detected",
				fmt.Sprintf("%s is responsible for %.0f%% of all commits. Workload is heavily concentrated.", name, share*100),
				"Distribute work more evenly across the team to prevent burnout and reduce dependency on single individuals.",
			)}
		}
	}
	return nil
}

// Command rules.

// commandCounts indexes command usage by command, summing duplicates.
func commandCounts(usage []models.CommandUsage) (map[string]int, int) {
	counts := make(map[string]int, len(usage))
	total := 0
	for _, u := range usage {
		if u.Count <= 0 {
			continue
		}
		counts[u.Command] += u.Count
		total += u.Count
	}
	return counts, total
}

func resetRebaseRule(s Snapshot) []models.Insight {
	counts, total := commandCounts(s.Commands)
	if total == 0 {
		return nil
	}
	n := counts["git reset"] + counts["git rebase"]
	share := float64(n) / float64(total)
	if n == 0 || share <= resetRebaseShare {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryCommand, models.SeverityMedium,
		"High Reset/Rebase Activity",
		fmt.Sprintf("Git reset/rebase used %d times (%d%% of commands). May indicate workflow issues.", n, int(share*100)),
		"Review branching strategy and commit practices. Frequent resets may signal unclear requirements or rushed commits.",
	)}
}

func testingRule(s Snapshot) []models.Insight {
	counts, total := commandCounts(s.Commands)
	if total == 0 {
		return nil
	}
	tests := 0
	for _, cmd := range testCommands {
		tests += counts[cmd]
	}
	if tests == 0 {
		if total < missingTestsMinCommands {
			return nil
		}
		return []models.Insight{newInsight(models.CategoryCommand, models.SeverityHigh,
			"No Testing Commands Detected",
			"No test execution commands found in recent history. Tests may not be running regularly.",
			"Integrate testing into your workflow. Run tests before commits and consider setting up pre-commit hooks.",
		)}
	}
	share := float64(tests) / float64(total)
	if share >= rareTestsShare {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryCommand, models.SeverityMedium,
		"Infrequent Testing",
		fmt.Sprintf("Only %d test command(s) found (%d%% of total). Tests may not be running frequently enough.", tests, int(share*100)),
		"Increase test frequency. Aim to run tests before every commit or use continuous testing tools.",
	)}
}

func rollbackRule(s Snapshot) []models.Insight {
	counts, total := commandCounts(s.Commands)
	if total == 0 {
		return nil
	}
	n := counts["git revert"] + counts["git reset --hard"]
	if n == 0 || float64(n)/float64(total) <= rollbackShare {
		return nil
	}
	return []models.Insight{newInsight(models.CategoryCommand, models.SeverityMedium,
		"Frequent Rollbacks Detected",
		fmt.Sprintf("%d rollback command(s) detected. This may indicate unstable code or inadequate testing.", n),
		"Improve testing coverage and code review process before merging. Consider feature flags for safer deployments.",
	)}
}
