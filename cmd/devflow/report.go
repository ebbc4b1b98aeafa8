package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/internal/report"
)

func reportFlags(extra cli.Flag) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Value:   "devflow-export",
			Usage:   "Directory written by devflow export",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Report title (default: the data directory name)",
		},
		extra,
	}
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render exported documents as an HTML dashboard",
		Subcommands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Write the dashboard to an HTML file",
				Flags: reportFlags(&cli.StringFlag{
					Name:  "html",
					Value: "devflow-report.html",
					Usage: "Output HTML file",
				}),
				Action: runReportRender,
			},
			{
				Name:  "serve",
				Usage: "Serve the dashboard over HTTP, re-rendering on each request",
				Flags: reportFlags(&cli.IntFlag{
					Name:    "port",
					Aliases: []string{"p"},
					Value:   8080,
					Usage:   "Port number",
				}),
				Action: runReportServe,
			},
		},
	}
}

func runReportRender(c *cli.Context) error {
	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	path := c.String("html")
	if err := renderer.RenderToFile(c.String("data"), c.String("title"), path); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	output.NewFormatterTo(c.App.Writer, output.FormatText, !c.Bool("no-color")).Success("Report rendered: %s", path)
	return nil
}

func runReportServe(c *cli.Context) error {
	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Int("port")),
		Handler:           renderer.Handler(c.String("data"), c.String("title")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := c.Context
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	fmt.Fprintf(c.App.Writer, "Serving report at http://localhost%s\n", srv.Addr)
	fmt.Fprintln(c.App.Writer, "Press Ctrl+C to stop")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
