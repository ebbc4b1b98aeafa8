package quality

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t\n", 0},
		{"single short word", "wip", 0},
		{"two short words", "fix bug", 15},
		{"acceptable length", "update the code", 15 + 15},
		{"ideal length", "Update dependency versions", 25 + 15},
		{"conventional", "feat: add login", 15 + 30 + 15},
		{"conventional with scope and bang", "fix(api)!: drop legacy endpoint", 25 + 30 + 15},
		{"conventional case insensitive", "FEAT: Add Login Form", 25 + 30 + 15},
		{"not conventional without space", "feat:add login form here", 25 + 15},
		{"unknown verb", "feature: add login form here", 25 + 15},
		{"hash ticket", "Resolve crash on start #42", 25 + 20 + 15},
		{"project ticket", "ABC-123 resolve crash on start", 25 + 20 + 15},
		{"lowercase ticket ignored", "abc-123 resolve crash on start", 25 + 15},
		{"ticket in body", "Resolve crash on start\n\nRefs JIRA-9", 25 + 20 + 15 + 10},
		{"blank body lines", "Resolve crash on start\n\n   \n", 25 + 15},
		{
			"everything",
			"feat(auth): implement JWT authentication #123\n\nAdded comprehensive JWT support",
			25 + 30 + 20 + 15 + 10,
		},
		{"too long subject", strings.Repeat("word ", 30), 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.message))
		})
	}
}

func TestScore_FullMessageBeatsTerse(t *testing.T) {
	full := Score("feat(auth): implement JWT authentication #123\n\nAdded comprehensive JWT support")
	terse := Score("fix bug")
	assert.GreaterOrEqual(t, full, terse)
}

func TestScore_AlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	alphabet := []rune("abcXYZ-#0123456789 :()!\n\tfeatfix日本")
	for i := 0; i < 5000; i++ {
		n := r.Intn(200)
		msg := make([]rune, n)
		for j := range msg {
			msg[j] = alphabet[r.Intn(len(alphabet))]
		}
		got := Score(string(msg))
		if got < 0 || got > 100 {
			t.Fatalf("Score(%q) = %d out of range", string(msg), got)
		}
	}
}

func TestScore_CountsRunes(t *testing.T) {
	// 21 runes, 59 bytes.
	subject := "日本語のコミットメッセージです 修正 完了"
	assert.Equal(t, IdealLengthPoints+MultiWordPoints, Score(subject))
}

func TestExplain(t *testing.T) {
	b := Explain("docs: describe setup\n\nMore detail")
	assert.Equal(t, Breakdown{
		Length:       25,
		Conventional: 30,
		MultiWord:    15,
		Body:         10,
		Total:        80,
	}, b)
}
