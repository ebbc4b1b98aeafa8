package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeAnalyze() string {
	return `Runs the full commit analytics pipeline on a git repository: work patterns, file hotspots, productivity score and insights.

USE WHEN:
- Getting a first overview of how a team works in a repository
- Preparing a retrospective or engineering health review
- You need several sections at once and want one history read

INTERPRETING RESULTS:
- Only commits inside the time window (default 30 days) are counted
- Hotspot risk above 75 is critical, above 50 high, above 25 medium
- Productivity grade A+ is 90+, A 80+, B 70+, C 60+, D below 60
- Insights are ordered high severity first

METRICS RETURNED:
- patterns: commits by hour and weekday, top authors, averages
- hotspots: per-file risk score, change count, contributors, language
- productivity: score, grade, component scores, raw metrics
- insights: type, severity, title, description, recommendation`
}

func describePatterns() string {
	return `Summarizes when and how often commits happen: hour-of-day and day-of-week distributions plus author activity.

USE WHEN:
- Checking whether work happens in sustainable hours
- Finding the team's peak collaboration times
- Seeing which authors are most active in a window

INTERPRETING RESULTS:
- Hours and weekdays are bucketed in UTC
- A large share of commits between 22:00 and 05:00 suggests overtime
- One author holding most commits is a knowledge concentration risk
- workday_vs_weekend_ratio is 0 when there are no weekend commits

METRICS RETURNED:
- total_commits, commits_per_hour (24 buckets), commits_per_weekday (Monday first)
- top_authors: name, commits and percentage, most active first
- average_commit_message_length, workday_percentage, weekend_percentage`
}

func describeHotspots() string {
	return `Scores source files by change risk using change frequency, recency, contributor count and churn.

USE WHEN:
- Deciding where to focus code review or refactoring
- Finding files owned by a single person (bus factor)
- Spotting files changing too fast to stay stable

INTERPRETING RESULTS:
- riskScore is 0-100; above 75 is critical, above 50 high, above 25 medium
- Frequency contributes up to 40 points, recency 30, contributors 20, churn 10
- One contributor on a frequently changed file is a bus factor risk
- lastModifiedDaysAgo is -1 when unknown

METRICS RETURNED:
- files: path, riskScore, changeCount, contributors, language, lastModifiedDaysAgo
- summary: total files, total changes, mean/p50/p95/max risk, critical files`
}

func describeProductivity() string {
	return `Computes a 0-100 productivity score from commit frequency, commit message quality and work-hour distribution.

USE WHEN:
- Tracking delivery cadence over time
- Checking commit message hygiene
- Reviewing work-life balance signals

INTERPRETING RESULTS:
- frequencyScore (0-40) reaches 40 at 3+ commits per day of the window
- qualityScore (0-30) scales the average commit message quality
- distributionScore (0-30) peaks when 50-80% of commits land in weekday hours 09:00-17:59 UTC
- Grade is N/A when the window has no commits
- Grade A+ is 90+, A 80+, B 70+, C 60+, D below 60

METRICS RETURNED:
- score, grade, frequencyScore, qualityScore, distributionScore
- metrics: totalCommits, activeDays, averageDailyCommits, averageQuality, workHourPercentage
- insights: short notes on what drives the score`
}

func describeInsights() string {
	return `Runs the insight rule engine over commits, hotspots and optional shell command usage to produce actionable findings.

USE WHEN:
- Looking for concrete recommendations rather than raw metrics
- Auditing team health (bus factor, overload, late-night work)
- Checking workflow habits from shell history (testing, rollbacks, resets)

INTERPRETING RESULTS:
- Severity high needs attention now, medium soon, low is informational
- type risk covers file stability, workflow covers timing and rhythm
- type health covers team distribution, command covers shell usage
- Command rules only fire when commands_file is supplied

METRICS RETURNED:
- insights: type, severity, title, description, recommendation, timestamp
- summary: total, counts by severity and by type`
}

func describeInfo() string {
	return `Describes a git repository without analyzing it: default branch, branches, detached state and commit count.

USE WHEN:
- Checking a path is a readable repository before analysis
- Choosing a branch for other tools
- Verifying that history exists

INTERPRETING RESULTS:
- is_empty means the repository has no commits yet
- is_detached means HEAD is not on a branch
- total_commits counts the whole history of the selected branch

METRICS RETURNED:
- path, is_empty, default_branch, is_detached, branches, total_commits`
}
