package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/internal/cache"
	"github.com/panbanda/devflow/internal/logging"
	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/internal/remote"
	"github.com/panbanda/devflow/internal/service/analysis"
	"github.com/panbanda/devflow/pkg/config"
)

// env is the per-invocation state shared by commands.
type env struct {
	cfg     *config.Config
	source  string
	log     *logrus.Logger
	format  output.Format
	colored bool
	svc     *analysis.Service
}

// loadEnv resolves config, logging, cache and output settings. Progress is
// written to progressOut when it is non-nil.
func loadEnv(c *cli.Context, progressOut io.Writer) (*env, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	loaded, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = logrus.DebugLevel.String()
	}
	log, err := logging.NewTo(c.App.ErrWriter, level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	if loaded.Source != "" {
		log.WithField("path", loaded.Source).Debug("loaded config")
	}

	formatName := cfg.Output.Format
	if c.IsSet("format") {
		formatName = c.String("format")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	svcOpts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithCache(openCache(c, cfg, log)),
		analysis.WithLogger(log),
	}
	if progressOut != nil {
		svcOpts = append(svcOpts, analysis.WithProgress(progressOut))
	}

	return &env{
		cfg:     cfg,
		source:  loaded.Source,
		log:     log,
		format:  format,
		colored: cfg.Output.Color && !c.Bool("no-color"),
		svc:     analysis.New(svcOpts...),
	}, nil
}

// openCache falls back to a disabled cache when the directory is unusable.
func openCache(c *cli.Context, cfg *config.Config, log *logrus.Logger) *cache.Cache {
	if c.Bool("no-cache") || !cfg.Cache.Enabled {
		return cache.Disabled()
	}
	ch, err := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour, true)
	if err != nil {
		log.WithError(err).Warn("commit cache disabled")
		return cache.Disabled()
	}
	return ch
}

// formatter writes to --output when given, otherwise to the app's writer.
func (e *env) formatter(c *cli.Context) (*output.Formatter, error) {
	if path := c.String("output"); path != "" {
		return output.NewFormatter(e.format, path, false)
	}
	return output.NewFormatterTo(c.App.Writer, e.format, e.colored), nil
}

// getPaths returns paths from positional args, defaulting to ["."].
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// target is one repository argument and the local path analyzed for it.
type target struct {
	Arg  string
	Path string
}

// resolveTargets clones remote arguments such as owner/repo@ref. The
// returned cleanup removes every clone.
func resolveTargets(ctx context.Context, args []string, progress io.Writer) ([]target, func(), error) {
	var sources []*remote.Source
	cleanup := func() {
		for _, src := range sources {
			src.Cleanup()
		}
	}

	targets := make([]target, 0, len(args))
	for _, arg := range args {
		src, err := remote.Parse(arg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		if src == nil {
			targets = append(targets, target{Arg: arg, Path: arg})
			continue
		}
		if err := src.Clone(ctx, progress); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		sources = append(sources, src)
		targets = append(targets, target{Arg: arg, Path: src.CloneDir})
	}
	return targets, cleanup, nil
}

// runOne analyzes the first repository argument.
func (e *env) runOne(c *cli.Context, opts analysis.Options) (*analysis.Result, error) {
	targets, cleanup, err := resolveTargets(c.Context, getPaths(c)[:1], nil)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := e.svc.Run(c.Context, targets[0].Path, opts)
	if err != nil {
		return nil, err
	}
	if targets[0].Arg != targets[0].Path {
		res.Repository = targets[0].Arg
	}
	return res, nil
}

// validateDays validates the --days flag and returns an error if invalid.
func validateDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("--days must be a positive integer (got %d)", days)
	}
	return nil
}
