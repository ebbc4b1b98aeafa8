package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/internal/service/analysis"
	"github.com/panbanda/devflow/internal/testutil"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestServer() *Server {
	return NewServer("1.0.0-test", analysis.New(analysis.WithClock(func() time.Time { return now })))
}

// sampleRepo has four source commits by two authors plus a docs commit.
func sampleRepo(t *testing.T) *testutil.Repo {
	t.Helper()
	r := testutil.NewRepo(t)
	r.Commit(testutil.Change{Author: "alice", Message: "feat: add parser", When: now.Add(-72 * time.Hour),
		Files: map[string]string{"parser.go": "package p\n", "lexer.go": "package p\n"}})
	r.Commit(testutil.Change{Author: "alice", Message: "fix: parser edge case", When: now.Add(-48 * time.Hour),
		Files: map[string]string{"parser.go": "package p\n\nvar x = 1\n"}})
	r.Commit(testutil.Change{Author: "bob", Message: "refactor: split parser", When: now.Add(-24 * time.Hour),
		Files: map[string]string{"parser.go": "package p\n\nvar x = 2\n"}})
	r.Commit(testutil.Change{Author: "bob", Message: "docs: usage", When: now.Add(-2 * time.Hour),
		Files: map[string]string{"README.md": "usage\n"}})
	return r
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("tool returned error: %s", text)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, text)
	}
}

func TestServerCreation(t *testing.T) {
	server := newTestServer()
	if server == nil || server.server == nil || server.svc == nil {
		t.Fatal("NewServer() returned an incomplete server")
	}
}

func TestServerCreationDefaults(t *testing.T) {
	server := NewServer("", nil)
	if server.svc == nil {
		t.Fatal("NewServer(\"\", nil) did not create a service")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"analyze":      describeAnalyze,
		"patterns":     describePatterns,
		"hotspots":     describeHotspots,
		"productivity": describeProductivity,
		"insights":     describeInsights,
		"info":         describeInfo,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	tests := map[string]string{
		"":          ".",
		"   ":       ".",
		"/foo/bar":  "/foo/bar",
		"./project": "./project",
	}
	for in, want := range tests {
		if got := getPath(in); got != want {
			t.Errorf("getPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{"yaml", output.FormatYAML},
		{"yml", output.FormatYAML},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"unknown", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(tt.format); got != tt.expected {
			t.Errorf("getFormat(%q) = %q, want %q", tt.format, got, tt.expected)
		}
	}
}

func TestToolError(t *testing.T) {
	result, out, err := toolError("boom")
	if err != nil {
		t.Fatalf("toolError returned error: %v", err)
	}
	if out != nil {
		t.Errorf("toolError output = %v, want nil", out)
	}
	if !result.IsError {
		t.Error("IsError = false, want true")
	}
	if got := resultText(t, result); got != "Error: boom" {
		t.Errorf("text = %q, want %q", got, "Error: boom")
	}
}

func TestHandleAnalyze(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handleAnalyze(context.Background(), nil, RepoInput{Path: r.Path, Format: "json"})
	if err != nil {
		t.Fatalf("handleAnalyze returned error: %v", err)
	}
	var got struct {
		Repository string `json:"repository"`
		WindowDays int    `json:"windowDays"`
		Patterns   struct {
			TotalCommits int `json:"total_commits"`
		} `json:"patterns"`
		Insights []json.RawMessage `json:"insights"`
	}
	decode(t, result, &got)
	if got.WindowDays != 30 {
		t.Errorf("windowDays = %d, want 30", got.WindowDays)
	}
	if got.Patterns.TotalCommits != 4 {
		t.Errorf("total_commits = %d, want 4", got.Patterns.TotalCommits)
	}
	if got.Insights == nil {
		t.Error("insights missing from output")
	}
}

func TestHandleAnalyzeInvalidPath(t *testing.T) {
	s := newTestServer()
	result, _, err := s.handleAnalyze(context.Background(), nil, RepoInput{Path: filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatalf("handleAnalyze returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error, got %s", resultText(t, result))
	}
}

func TestHandlePatterns(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handlePatterns(context.Background(), nil, PatternsInput{
		RepoInput:  RepoInput{Path: r.Path, Format: "json"},
		TopAuthors: 1,
	})
	if err != nil {
		t.Fatalf("handlePatterns returned error: %v", err)
	}
	var got struct {
		TotalCommits int `json:"total_commits"`
		TopAuthors   []struct {
			Name    string `json:"name"`
			Commits int    `json:"commits"`
		} `json:"top_authors"`
	}
	decode(t, result, &got)
	if got.TotalCommits != 4 {
		t.Errorf("total_commits = %d, want 4", got.TotalCommits)
	}
	if len(got.TopAuthors) != 1 {
		t.Fatalf("got %d authors, want 1", len(got.TopAuthors))
	}
	// Tie on two commits each breaks by name.
	if got.TopAuthors[0].Name != "alice" {
		t.Errorf("top author = %q, want alice", got.TopAuthors[0].Name)
	}
}

func TestHandleHotspots(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handleHotspots(context.Background(), nil, HotspotsInput{
		RepoInput: RepoInput{Path: r.Path, Format: "json"},
		Top:       1,
	})
	if err != nil {
		t.Fatalf("handleHotspots returned error: %v", err)
	}
	var got struct {
		Files []struct {
			Path         string `json:"path"`
			ChangeCount  int    `json:"changeCount"`
			Contributors int    `json:"contributors"`
		} `json:"files"`
		Summary struct {
			TotalFiles int `json:"total_files"`
		} `json:"summary"`
	}
	decode(t, result, &got)
	if len(got.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(got.Files))
	}
	if got.Files[0].Path != "parser.go" || got.Files[0].ChangeCount != 3 || got.Files[0].Contributors != 2 {
		t.Errorf("top file = %+v, want parser.go with 3 changes by 2 contributors", got.Files[0])
	}
	if got.Summary.TotalFiles != 2 {
		t.Errorf("total_files = %d, want 2", got.Summary.TotalFiles)
	}
}

func TestHandleProductivity(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handleProductivity(context.Background(), nil, RepoInput{Path: r.Path, Format: "yaml"})
	if err != nil {
		t.Fatalf("handleProductivity returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("tool returned error: %s", text)
	}
	if !strings.Contains(text, "totalCommits: 4") {
		t.Errorf("yaml output missing totalCommits:\n%s", text)
	}
}

func TestHandleInsights(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	commands := filepath.Join(t.TempDir(), "commands.yaml")
	testutil.WriteFile(t, commands, "git commit: 20\ngit reset: 5\ngit push: 15\n")

	result, _, err := s.handleInsights(context.Background(), nil, InsightsInput{
		RepoInput:    RepoInput{Path: r.Path, Format: "json"},
		Rules:        []string{"testing"},
		CommandsFile: commands,
	})
	if err != nil {
		t.Fatalf("handleInsights returned error: %v", err)
	}
	var got struct {
		Insights []struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"insights"`
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	decode(t, result, &got)
	if len(got.Insights) != 1 || got.Insights[0].Title != "No Testing Commands Detected" {
		t.Fatalf("insights = %+v, want only the missing tests insight", got.Insights)
	}
	if got.Insights[0].Type != "command" {
		t.Errorf("type = %q, want command", got.Insights[0].Type)
	}
	if got.Summary.Total != 1 {
		t.Errorf("summary total = %d, want 1", got.Summary.Total)
	}
}

func TestHandleInsightsErrors(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	tests := []struct {
		name  string
		input InsightsInput
	}{
		{"bad severity", InsightsInput{RepoInput: RepoInput{Path: r.Path}, MinSeverity: "urgent"}},
		{"unknown rule", InsightsInput{RepoInput: RepoInput{Path: r.Path}, Rules: []string{"nope"}}},
		{"missing commands file", InsightsInput{RepoInput: RepoInput{Path: r.Path}, CommandsFile: filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleInsights(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handleInsights returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, result))
			}
		})
	}
}

func TestHandleInfo(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handleInfo(context.Background(), nil, InfoInput{Path: r.Path, Format: "json"})
	if err != nil {
		t.Fatalf("handleInfo returned error: %v", err)
	}
	var got struct {
		IsEmpty       bool     `json:"is_empty"`
		DefaultBranch string   `json:"default_branch"`
		Branches      []string `json:"branches"`
		TotalCommits  int      `json:"total_commits"`
	}
	decode(t, result, &got)
	if got.IsEmpty || got.TotalCommits != 4 || got.DefaultBranch != "master" {
		t.Errorf("info = %+v, want 4 commits on master", got)
	}
}

func TestHandleInfoDefaultFormat(t *testing.T) {
	r := sampleRepo(t)
	s := newTestServer()

	result, _, err := s.handleInfo(context.Background(), nil, InfoInput{Path: r.Path})
	if err != nil {
		t.Fatalf("handleInfo returned error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "total_commits") {
		t.Errorf("toon output missing total_commits:\n%s", text)
	}
}

func TestFormatOutputMarkdown(t *testing.T) {
	table := output.NewTable("Files", []string{"Path", "Changes"}, [][]string{{"a.go", "3"}}, nil, nil)
	text, err := formatOutput(table, output.FormatMarkdown)
	if err != nil {
		t.Fatalf("formatOutput returned error: %v", err)
	}
	if !strings.Contains(text, "| a.go | 3 |") {
		t.Errorf("markdown output missing row:\n%s", text)
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: Demo\narguments:\n  - name: path\n    required: true\n---\nHello {{path}}\n"))
	if fm.Description != "Demo" {
		t.Errorf("description = %q, want Demo", fm.Description)
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Name != "path" || !fm.Arguments[0].Required {
		t.Errorf("arguments = %+v, want one required path", fm.Arguments)
	}
	if body != "Hello {{path}}\n" {
		t.Errorf("body = %q", body)
	}

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	if fm.Description != "" || body != "no frontmatter" {
		t.Errorf("plain content parsed as (%+v, %q)", fm, body)
	}

	fm, body = parseFrontmatter([]byte("---\nunterminated"))
	if fm.Description != "" || body != "---\nunterminated" {
		t.Errorf("unterminated frontmatter parsed as (%+v, %q)", fm, body)
	}
}

func TestSubstituteArgs(t *testing.T) {
	body := "path={{path}} days={{days}} top={{top}} other={{other}}"

	got := substituteArgs(body, map[string]string{"path": "/repo", "days": " "})
	want := "path=/repo days=30 top=10 other={{other}}"
	if got != want {
		t.Errorf("substituteArgs() = %q, want %q", got, want)
	}

	got = substituteArgs(body, nil)
	want = "path=. days=30 top=10 other={{other}}"
	if got != want {
		t.Errorf("substituteArgs(nil) = %q, want %q", got, want)
	}
}

func TestPromptHandler(t *testing.T) {
	fm := promptFrontmatter{Description: "Review"}
	handler := makePromptHandler(fm, "Review {{path}} for {{days}} days")

	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      "review",
			Arguments: map[string]string{"path": "/src", "days": "7"},
		},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Description != "Review" {
		t.Errorf("description = %q, want Review", result.Description)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(result.Messages))
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	if text != "Review /src for 7 days" {
		t.Errorf("text = %q", text)
	}
}

func TestPromptFiles(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded prompts")
	}
	for _, e := range entries {
		content, err := promptFiles.ReadFile("prompts/" + e.Name())
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", e.Name(), err)
		}
		fm, body := parseFrontmatter(content)
		if fm.Description == "" {
			t.Errorf("%s has no description", e.Name())
		}
		if strings.TrimSpace(body) == "" {
			t.Errorf("%s has an empty body", e.Name())
		}
		for _, arg := range fm.Arguments {
			if !strings.Contains(body, "{{"+arg.Name+"}}") {
				t.Errorf("%s declares %q but never uses it", e.Name(), arg.Name)
			}
		}
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest error: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid manifest JSON: %v", err)
	}
	if m.Name != "io.github.panbanda/devflow" || m.Version != "1.2.3" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/devflow:1.2.3" {
		t.Fatalf("packages = %+v", m.Packages)
	}
	pkg := m.Packages[0]
	if len(pkg.PackageArguments) != 1 || pkg.PackageArguments[0].Value != "mcp" {
		t.Errorf("package arguments = %+v", pkg.PackageArguments)
	}
	if len(pkg.EnvironmentVariables) != 1 || pkg.EnvironmentVariables[0].Name != "DEVFLOW_CONFIG" {
		t.Errorf("environment variables = %+v", pkg.EnvironmentVariables)
	}
	if pkg.Transport.Type != "stdio" {
		t.Errorf("transport = %q", pkg.Transport.Type)
	}

	data, err = GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest error: %v", err)
	}
	if !strings.Contains(string(data), `"version": "0.0.0"`) {
		t.Errorf("empty version not defaulted:\n%s", data)
	}
}
