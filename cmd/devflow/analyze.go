package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/internal/service/analysis"
	"github.com/panbanda/devflow/pkg/config"
)

// analysisFlags are shared by every command that runs the pipeline.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "days",
			Aliases: []string{"d"},
			Usage:   "Number of days of history to analyze (default from config)",
		},
		&cli.StringFlag{
			Name:  "author",
			Usage: "Only count commits whose author name contains this text",
		},
		&cli.StringFlag{
			Name:  "branch",
			Usage: "Branch to read (default HEAD)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum commits to read (0 for no limit)",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Number of hotspot files to show (default from config)",
		},
		&cli.IntFlag{
			Name:  "top-authors",
			Usage: "Number of authors to show (default from config)",
		},
		&cli.StringFlag{
			Name:  "commands",
			Usage: "YAML or JSON file of shell command usage counts",
		},
		&cli.StringSliceFlag{
			Name:  "rule",
			Usage: "Insight rule to run (repeatable, default all)",
		},
		&cli.StringFlag{
			Name:  "min-severity",
			Usage: "Drop insights below this severity: low, medium, high",
		},
	}
}

// analysisOptions maps flags to pipeline options. Unset flags fall back to
// config inside the service.
func analysisOptions(c *cli.Context, cfg *config.Config) (analysis.Options, error) {
	opts := analysis.Options{
		Author:     c.String("author"),
		Branch:     c.String("branch"),
		Limit:      c.Int("limit"),
		TopFiles:   c.Int("top"),
		TopAuthors: c.Int("top-authors"),
		Rules:      c.StringSlice("rule"),
	}
	if c.IsSet("days") {
		if err := validateDays(c.Int("days")); err != nil {
			return opts, err
		}
		opts.Days = c.Int("days")
	}
	if c.IsSet("limit") && opts.Limit < 0 {
		return opts, fmt.Errorf("--limit must not be negative (got %d)", opts.Limit)
	}
	if c.IsSet("min-severity") {
		sev, err := config.ParseSeverity(c.String("min-severity"))
		if err != nil {
			return opts, err
		}
		opts.MinSeverity = sev
	}

	commandsFile := cfg.Insights.CommandsFile
	if c.IsSet("commands") {
		commandsFile = c.String("commands")
	}
	commands, err := analysis.LoadCommands(commandsFile)
	if err != nil {
		return opts, err
	}
	opts.Commands = commands
	return opts, nil
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run every analyzer and print a full report",
		ArgsUsage: "[repo...]",
		Description: `Analyzes one or more repositories. Several repositories are analyzed in
parallel and reported one after another in argument order.`,
		Flags:  analysisFlags(),
		Action: runAnalyzeCmd,
	}
}

// repoOutput is one repository in multi-repository data output.
type repoOutput struct {
	Path   string           `json:"path"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func runAnalyzeCmd(c *cli.Context) error {
	e, err := loadEnv(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	opts, err := analysisOptions(c, e.cfg)
	if err != nil {
		return err
	}

	targets, cleanup, err := resolveTargets(c.Context, getPaths(c), c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer cleanup()

	paths := make([]string, len(targets))
	for i, t := range targets {
		paths[i] = t.Path
	}
	results := e.svc.AnalyzeMany(c.Context, paths, opts)
	for i, t := range targets {
		if t.Arg == t.Path {
			continue
		}
		results[i].Path = t.Arg
		if results[i].Result != nil {
			results[i].Result.Repository = t.Arg
		}
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(results) == 1 {
		if results[0].Err != nil {
			return results[0].Err
		}
		return formatter.Output(results[0].Result)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Error: %v\n", r.Err)
		}
	}

	switch formatter.Format() {
	case output.FormatText, output.FormatMarkdown:
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			if err := formatter.Output(r.Result); err != nil {
				return err
			}
		}
	default:
		out := make([]repoOutput, len(results))
		for i, r := range results {
			out[i] = repoOutput{Path: r.Path, Result: r.Result}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
			}
		}
		if err := formatter.Output(out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed", failed, len(results))
	}
	return nil
}

// sectionCmd builds a command that prints one part of the analysis for a
// single repository.
func sectionCmd(name, usage string, section analysis.Section, alias string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Aliases:   []string{alias},
		Usage:     usage,
		ArgsUsage: "[repo]",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, c.App.ErrWriter)
			if err != nil {
				return err
			}
			opts, err := analysisOptions(c, e.cfg)
			if err != nil {
				return err
			}

			res, err := e.runOne(c, opts)
			if err != nil {
				return err
			}

			formatter, err := e.formatter(c)
			if err != nil {
				return err
			}
			defer formatter.Close()
			return formatter.Output(res.Report(section))
		},
	}
}
