package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes devflow's analyzers
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "devflow": {
        "command": "devflow",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_repository    Full report: patterns, hotspots, productivity, insights
  - analyze_patterns      Commit timing and author activity
  - analyze_hotspots      File risk scores
  - analyze_productivity  Productivity score and grade
  - generate_insights     Actionable findings from the rule engine
  - repository_info       Branches and history size`,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry server.json manifest",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(data))
					return nil
				},
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	// stdout carries the protocol, so no progress output.
	e, err := loadEnv(c, nil)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, e.svc)
	return server.Run(c.Context)
}
