package mcpserver

import (
	"bytes"
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/internal/service/analysis"
	"github.com/panbanda/devflow/pkg/analyzer/hotspot"
	"github.com/panbanda/devflow/pkg/config"
	"github.com/panbanda/devflow/pkg/models"
)

// RepoInput is the base input for all repository tools.
type RepoInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Repository path. Defaults to the current directory."`
	Days   int    `json:"days,omitempty" jsonschema:"Number of days of history to analyze. Default 30."`
	Author string `json:"author,omitempty" jsonschema:"Only count commits whose author name contains this text."`
	Branch string `json:"branch,omitempty" jsonschema:"Branch to read. Defaults to HEAD."`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum commits to read. 0 means no limit."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// PatternsInput adds pattern options.
type PatternsInput struct {
	RepoInput
	TopAuthors int `json:"top_authors,omitempty" jsonschema:"Number of authors to list. Default 10."`
}

// HotspotsInput adds hotspot options.
type HotspotsInput struct {
	RepoInput
	Top int `json:"top,omitempty" jsonschema:"Show top N files by risk score. Default 10."`
}

// InsightsInput adds insight engine options.
type InsightsInput struct {
	RepoInput
	MinSeverity  string   `json:"min_severity,omitempty" jsonschema:"Drop insights below this severity: low (default), medium, or high."`
	Rules        []string `json:"rules,omitempty" jsonschema:"Insight rules to run. Defaults to all rules."`
	CommandsFile string   `json:"commands_file,omitempty" jsonschema:"YAML or JSON file of shell command usage counts for command insights."`
}

// InfoInput selects a repository to describe.
type InfoInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Repository path. Defaults to the current directory."`
	Branch string `json:"branch,omitempty" jsonschema:"Branch used to count commits. Defaults to HEAD."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

func getPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	return path
}

func getFormat(format string) output.Format {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return output.FormatJSON
	case "yaml", "yml":
		return output.FormatYAML
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func (in RepoInput) options() analysis.Options {
	return analysis.Options{
		Days:   in.Days,
		Author: in.Author,
		Branch: in.Branch,
		Limit:  in.Limit,
	}
}

// formatOutput renders markdown through the renderable and everything else
// through its data.
func formatOutput(r output.Renderable, format output.Format) (string, error) {
	if format == output.FormatMarkdown {
		var buf bytes.Buffer
		if err := r.RenderMarkdown(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	out, err := output.Marshal(format, r.RenderData())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input RepoInput) (*mcp.CallToolResult, any, error) {
	res, err := s.svc.Run(ctx, getPath(input.Path), input.options())
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(res, getFormat(input.Format))
}

func (s *Server) handlePatterns(ctx context.Context, req *mcp.CallToolRequest, input PatternsInput) (*mcp.CallToolResult, any, error) {
	opts := input.options()
	opts.TopAuthors = input.TopAuthors
	res, err := s.svc.Run(ctx, getPath(input.Path), opts)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(res.Part(analysis.SectionPatterns), getFormat(input.Format))
}

// hotspotView trims the hotspot data to the requested files.
type hotspotView struct {
	*hotspot.Analysis
	Files []models.FileRisk `json:"files"`
}

func (v hotspotView) RenderData() any {
	return struct {
		Files   []models.FileRisk `json:"files"`
		Summary hotspot.Summary   `json:"summary"`
	}{v.Files, v.Summary}
}

func (s *Server) handleHotspots(ctx context.Context, req *mcp.CallToolRequest, input HotspotsInput) (*mcp.CallToolResult, any, error) {
	opts := input.options()
	opts.TopFiles = input.Top
	res, err := s.svc.Run(ctx, getPath(input.Path), opts)
	if err != nil {
		return toolError(err.Error())
	}
	top := input.Top
	if top <= 0 {
		top = hotspot.DefaultTop
	}
	view := hotspotView{Analysis: res.Hotspots, Files: res.Hotspots.Top(top)}
	return toolResult(view, getFormat(input.Format))
}

func (s *Server) handleProductivity(ctx context.Context, req *mcp.CallToolRequest, input RepoInput) (*mcp.CallToolResult, any, error) {
	res, err := s.svc.Run(ctx, getPath(input.Path), input.options())
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(res.Part(analysis.SectionProductivity), getFormat(input.Format))
}

func (s *Server) handleInsights(ctx context.Context, req *mcp.CallToolRequest, input InsightsInput) (*mcp.CallToolResult, any, error) {
	opts := input.options()
	opts.Rules = input.Rules
	if input.MinSeverity != "" {
		sev, err := config.ParseSeverity(input.MinSeverity)
		if err != nil {
			return toolError(err.Error())
		}
		opts.MinSeverity = sev
	}
	commands, err := analysis.LoadCommands(input.CommandsFile)
	if err != nil {
		return toolError(err.Error())
	}
	opts.Commands = commands

	res, err := s.svc.Run(ctx, getPath(input.Path), opts)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(res.Part(analysis.SectionInsights), getFormat(input.Format))
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest, input InfoInput) (*mcp.CallToolResult, any, error) {
	info, err := s.svc.Info(ctx, getPath(input.Path), input.Branch)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(analysis.InfoReport(info), getFormat(input.Format))
}
