package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/devflow/internal/service/analysis"
)

// Server wraps the MCP server and registers all devflow analysis tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// NewServer creates a new MCP server with all devflow tools registered.
// A nil svc uses analysis.New().
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = analysis.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "devflow",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds all devflow tools to the server.
func (s *Server) registerTools() {
	// Everything in one run
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_repository",
		Description: describeAnalyze(),
	}, s.handleAnalyze)

	// Commit timing and authors
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_patterns",
		Description: describePatterns(),
	}, s.handlePatterns)

	// File risk
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_hotspots",
		Description: describeHotspots(),
	}, s.handleHotspots)

	// Productivity score
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_productivity",
		Description: describeProductivity(),
	}, s.handleProductivity)

	// Rule engine
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_insights",
		Description: describeInsights(),
	}, s.handleInsights)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repository_info",
		Description: describeInfo(),
	}, s.handleInfo)
}
