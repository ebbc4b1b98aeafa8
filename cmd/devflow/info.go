package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/service/analysis"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Describe a repository's branches and history",
		ArgsUsage: "[repo]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "branch",
				Usage: "Branch used to count commits (default HEAD)",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, nil)
			if err != nil {
				return err
			}
			targets, cleanup, err := resolveTargets(c.Context, getPaths(c)[:1], nil)
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := e.svc.Info(c.Context, targets[0].Path, c.String("branch"))
			if err != nil {
				return err
			}
			if targets[0].Arg != targets[0].Path {
				info.Path = targets[0].Arg
			}

			formatter, err := e.formatter(c)
			if err != nil {
				return err
			}
			defer formatter.Close()
			return formatter.Output(analysis.InfoReport(info))
		},
	}
}
