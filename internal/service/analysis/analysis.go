// Package analysis runs the devflow pipeline: extract commits, derive
// patterns, hotspots and productivity, then evaluate insight rules.
package analysis

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/devflow/internal/cache"
	"github.com/panbanda/devflow/internal/logging"
	"github.com/panbanda/devflow/internal/progress"
	"github.com/panbanda/devflow/internal/vcs"
	"github.com/panbanda/devflow/pkg/analyzer/extract"
	"github.com/panbanda/devflow/pkg/analyzer/hotspot"
	"github.com/panbanda/devflow/pkg/analyzer/insight"
	"github.com/panbanda/devflow/pkg/analyzer/pattern"
	"github.com/panbanda/devflow/pkg/analyzer/productivity"
	"github.com/panbanda/devflow/pkg/config"
	"github.com/panbanda/devflow/pkg/models"
)

// Service orchestrates analysis runs.
type Service struct {
	config   *config.Config
	opener   vcs.Opener
	cache    *cache.Cache
	log      *logrus.Logger
	now      func() time.Time
	progress io.Writer
	workers  int
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the commit cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the logger passed to every stage.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock fixes "now" for windows, recency and insight timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithProgress shows a spinner on w while commits are read. Parallel runs
// never show one.
func WithProgress(w io.Writer) Option {
	return func(s *Service) {
		s.progress = w
	}
}

// WithWorkers bounds AnalyzeMany. Non-positive means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
		cache:  cache.Disabled(),
		log:    logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	return s
}

// Options are the per-run settings. Zero values take the configured
// defaults.
type Options struct {
	Days        int
	Author      string
	Branch      string
	Limit       int
	TopFiles    int
	TopAuthors  int
	Commands    []models.CommandUsage
	Rules       []string
	MinSeverity models.Severity
}

func (s *Service) resolve(opts Options) (Options, []insight.Rule, error) {
	cfg := s.config
	if opts.Days <= 0 {
		opts.Days = cfg.Analysis.Days
	}
	if opts.Author == "" {
		opts.Author = cfg.Analysis.Author
	}
	if opts.Branch == "" {
		opts.Branch = cfg.Analysis.Branch
	}
	if opts.Limit <= 0 {
		opts.Limit = cfg.Analysis.Limit
	}
	if opts.TopFiles <= 0 {
		opts.TopFiles = cfg.Analysis.TopFiles
	}
	if opts.TopAuthors <= 0 {
		opts.TopAuthors = cfg.Analysis.TopAuthors
	}
	if opts.Rules == nil {
		opts.Rules = cfg.Insights.Rules
	}
	if opts.MinSeverity == "" {
		sev, err := config.ParseSeverity(cfg.Insights.MinSeverity)
		if err != nil {
			return opts, nil, err
		}
		opts.MinSeverity = sev
	}
	rules, err := insight.SelectRules(opts.Rules)
	if err != nil {
		return opts, nil, err
	}
	return opts, rules, nil
}

// Run analyzes one repository. Only an unusable path or invalid options
// fail; unreadable history yields an empty result.
func (s *Service) Run(ctx context.Context, path string, opts Options) (*Result, error) {
	return s.run(ctx, path, opts, s.progress)
}

func (s *Service) run(ctx context.Context, path string, opts Options, progressOut io.Writer) (*Result, error) {
	opts, rules, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	extractOpts := []extract.Option{
		extract.WithDays(opts.Days),
		extract.WithAuthor(opts.Author),
		extract.WithBranch(opts.Branch),
		extract.WithLimit(opts.Limit),
		extract.WithOpener(s.opener),
		extract.WithLogger(s.log),
		extract.WithClock(func() time.Time { return now }),
	}
	var spinner *progress.Tracker
	if progressOut != nil {
		spinner = progress.NewSpinnerTo(progressOut, "Reading commits")
		extractOpts = append(extractOpts, extract.WithSpinner(spinner))
	}
	repo, err := extract.New(extractOpts...).Open(path)
	if err != nil {
		if spinner != nil {
			spinner.FinishError(err)
		}
		return nil, err
	}

	commits, cached := s.commits(ctx, repo, opts, now)
	if spinner != nil {
		if cached {
			spinner.FinishSkipped("cached")
		} else {
			spinner.FinishSuccess()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Repository:  repo.Path(),
		Head:        repo.HeadHash(),
		WindowDays:  opts.Days,
		GeneratedAt: now,
		FromCache:   cached,
		Commits:     commits,
		Patterns:    pattern.Analyze(commits, opts.TopAuthors),
		Hotspots:    hotspot.Analyze(commits, now, hotspot.WithTop(opts.TopFiles)),
	}
	res.Productivity = productivity.Calculate(commits, opts.Days)

	engine := insight.New(
		insight.WithRules(rules...),
		insight.WithClock(func() time.Time { return now }),
		insight.WithLogger(s.log),
	)
	generated := engine.Generate(insight.Snapshot{
		Files:    res.Hotspots.Files,
		Commits:  commits,
		Commands: opts.Commands,
		Now:      now,
	})
	res.Insights = insight.Filter(generated, opts.MinSeverity)
	insight.Sort(res.Insights)
	res.Summary = insight.Summarize(res.Insights)

	s.log.WithFields(logrus.Fields{
		"repo":     res.Repository,
		"commits":  len(commits),
		"files":    len(res.Hotspots.Files),
		"insights": len(res.Insights),
		"cached":   cached,
	}).Info("analysis complete")
	return res, nil
}

// commits reads the window through the cache.
func (s *Service) commits(ctx context.Context, repo *extract.Repo, opts Options, now time.Time) ([]models.Commit, bool) {
	head := repo.HeadHash()
	if !s.cache.Enabled() || head == "" {
		return repo.Extract(ctx), false
	}
	abs, err := filepath.Abs(repo.Path())
	if err != nil {
		abs = repo.Path()
	}
	key := cache.CommitKey{
		Path:   abs,
		Head:   head,
		Days:   opts.Days,
		Author: opts.Author,
		Branch: opts.Branch,
		Limit:  opts.Limit,
		Date:   now,
	}
	if commits, ok := s.cache.GetCommits(key); ok {
		s.log.WithField("repo", abs).Debug("commit cache hit")
		return commits, true
	}
	commits := repo.Extract(ctx)
	if ctx.Err() == nil {
		if err := s.cache.PutCommits(key, commits); err != nil {
			s.log.WithError(err).Debug("commit cache write failed")
		}
	}
	return commits, false
}

// RepoResult is the outcome of one repository in AnalyzeMany.
type RepoResult struct {
	Path   string
	Result *Result
	Err    error
}

// AnalyzeMany runs one pipeline per path in parallel. Results are in input
// order and one failing repository does not affect the others.
func (s *Service) AnalyzeMany(ctx context.Context, paths []string, opts Options) []RepoResult {
	results := make([]RepoResult, len(paths))
	if len(paths) == 1 {
		res, err := s.Run(ctx, paths[0], opts)
		results[0] = RepoResult{Path: paths[0], Result: res, Err: err}
		return results
	}

	var tracker *progress.Tracker
	if s.progress != nil {
		tracker = progress.NewTrackerTo(s.progress, "Analyzing repositories", len(paths))
	}

	p := pool.New().WithMaxGoroutines(s.workers)
	for i, path := range paths {
		p.Go(func() {
			res, err := s.run(ctx, path, opts, nil)
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			results[i] = RepoResult{Path: path, Result: res, Err: err}
			if tracker != nil {
				tracker.Tick()
			}
		})
	}
	p.Wait()
	if tracker != nil {
		tracker.FinishSuccess()
	}
	return results
}

// Info describes the repository at path.
func (s *Service) Info(ctx context.Context, path string, branch string) (models.RepositoryInfo, error) {
	if branch == "" {
		branch = s.config.Analysis.Branch
	}
	repo, err := extract.New(
		extract.WithBranch(branch),
		extract.WithOpener(s.opener),
		extract.WithLogger(s.log),
	).Open(path)
	if err != nil {
		return models.RepositoryInfo{}, err
	}
	return repo.Info(ctx), nil
}
