// Package quality scores commit messages.
package quality

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	conventionalPattern = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)(\(.+\))?!?:\s.+`)
	ticketPattern       = regexp.MustCompile(`#\d+|[A-Z]+-\d+|JIRA-\d+`)
)

// Points awarded per criterion.
const (
	IdealLengthPoints      = 25
	AcceptableLengthPoints = 15
	ConventionalPoints     = 30
	TicketPoints           = 20
	MultiWordPoints        = 15
	BodyPoints             = 10
)

// Breakdown is the per-criterion score of one message.
type Breakdown struct {
	Length       int `json:"length"`
	Conventional int `json:"conventional"`
	Ticket       int `json:"ticket"`
	MultiWord    int `json:"multi_word"`
	Body         int `json:"body"`
	Total        int `json:"total"`
}

// Score rates a commit message 0-100.
func Score(message string) int {
	return Explain(message).Total
}

// Explain scores a message and reports which criteria contributed.
func Explain(message string) Breakdown {
	var b Breakdown
	message = strings.TrimSpace(message)
	if message == "" {
		return b
	}

	lines := strings.Split(message, "\n")
	subject := strings.TrimSpace(lines[0])

	switch n := utf8.RuneCountInString(subject); {
	case n >= 20 && n <= 72:
		b.Length = IdealLengthPoints
	case n >= 10 && n <= 100:
		b.Length = AcceptableLengthPoints
	}
	if conventionalPattern.MatchString(subject) {
		b.Conventional = ConventionalPoints
	}
	if ticketPattern.MatchString(message) {
		b.Ticket = TicketPoints
	}
	if len(strings.Fields(subject)) > 1 {
		b.MultiWord = MultiWordPoints
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) != "" {
			b.Body = BodyPoints
			break
		}
	}

	b.Total = min(100, b.Length+b.Conventional+b.Ticket+b.MultiWord+b.Body)
	return b
}
