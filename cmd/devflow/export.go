package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/export"
	"github.com/panbanda/devflow/internal/output"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write dashboard JSON documents for a repository",
		ArgsUsage: "[repo]",
		Description: `Writes productivity-summary.json, file-hotspots.json, insights.json and
commit-analytics.json. Every document is checked against its JSON schema
before anything is written.`,
		Flags: append(analysisFlags(),
			&cli.StringFlag{
				Name:  "output-dir",
				Value: "devflow-export",
				Usage: "Directory to write the documents to",
			},
		),
		Action: runExportCmd,
	}
}

func runExportCmd(c *cli.Context) error {
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

	written, err := export.Write(c.String("output-dir"), export.Build(res, export.WithTop(opts.TopFiles)))
	if err != nil {
		return err
	}

	msg := output.NewFormatterTo(c.App.Writer, output.FormatText, e.colored)
	for _, path := range written {
		msg.Success("Wrote %s", path)
	}
	return nil
}
