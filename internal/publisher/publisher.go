// Package publisher flips queued drafts to published under the daily quota.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/config"
	"github.com/correlate-dev/zennpub/internal/history"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/metrics"
	"github.com/correlate-dev/zennpub/internal/quota"
	"github.com/correlate-dev/zennpub/internal/state"
)

// Options control a single run.
type Options struct {
	// Count is the requested number of articles. Nil uses the configured
	// count; zero selects nothing.
	Count  *int
	DryRun bool
}

// ItemError is a per-slug failure. It never aborts the run.
type ItemError struct {
	Slug string
	Err  error
}

// Report summarizes a publish run.
type Report struct {
	DryRun     bool
	Recent     int
	Limit      int
	Remaining  int
	Requested  int
	Effective  int
	HistoryErr error

	Cooldown  []string
	Selected  []string
	Published []string
	Failed    []ItemError
}

// Print writes human-readable status lines.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "publishes in the last 24h: %d / daily limit: %d\n", r.Recent, r.Limit)
	if r.HistoryErr != nil {
		fmt.Fprintf(w, "  [WARN] history unavailable, assuming limit reached: %v\n", r.HistoryErr)
	}
	fmt.Fprintf(w, "remaining quota: %d -> to publish: %d\n", r.Remaining, r.Effective)
	if r.Effective == 0 {
		if r.Remaining > 0 && r.Requested <= 0 {
			fmt.Fprintln(w, "nothing requested, skipping publish")
			return
		}
		fmt.Fprintln(w, "rate limit reached, skipping today's publish")
		return
	}
	if len(r.Cooldown) > 0 {
		fmt.Fprintf(w, "in cooldown: %s\n", strings.Join(r.Cooldown, ", "))
	}
	if len(r.Selected) == 0 {
		fmt.Fprintln(w, "no drafts waiting (queue done, all published, or in cooldown)")
		return
	}
	prefix := ""
	if r.DryRun {
		prefix = "[DRY RUN] "
	}
	fmt.Fprintf(w, "%sselected %d:\n", prefix, len(r.Selected))
	for _, s := range r.Selected {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	if r.DryRun {
		fmt.Fprintln(w, "\n--dry-run: no files changed")
		return
	}
	for _, s := range r.Published {
		fmt.Fprintf(w, "  ✓ %s: published: false -> true\n", s)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  ✗ %s: %v\n", f.Slug, f.Err)
	}
	fmt.Fprintf(w, "\ndone: published %d\n", len(r.Published))
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(p *Publisher) { p.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(p *Publisher) { p.recorder = r } }

// Publisher selects drafts from the publish queue and marks them published.
type Publisher struct {
	cfg      *config.Config
	history  history.Source
	repo     *article.Repository
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New returns a Publisher reading publish history from src.
func New(cfg *config.Config, src history.Source, opts ...Option) *Publisher {
	p := &Publisher{cfg: cfg, history: src, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	p.repo = article.NewRepository(cfg.ArticlesDir(), cfg.Workspace, cfg.Location(), p.logger)
	return p
}

// Run performs one publish pass. It never touches the queue file and makes
// no network calls.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Report, error) {
	requested := p.cfg.Publish.Count
	if opts.Count != nil {
		requested = *opts.Count
	}
	daily := quota.NewDaily(p.cfg.Publish.DailyLimit, p.cfg.Publish.Window)
	report := &Report{DryRun: opts.DryRun, Limit: daily.Limit, Requested: requested}

	used, err := p.history.CountRecentEvents(ctx, daily.Window, history.Filter{
		Markers:  p.cfg.Publish.CommitMarkers,
		PathGlob: path.Join(filepath.ToSlash(p.cfg.Paths.Articles), "*.md"),
	})
	if err != nil {
		p.logger.Warn("Publish history unavailable, assuming quota exhausted", logfields.Error(err))
		report.HistoryErr = err
		used = daily.Limit
	}
	report.Recent = used
	report.Remaining = daily.Remaining(used)
	report.Effective = daily.Effective(requested, used)
	if report.Effective == 0 {
		if report.Remaining > 0 {
			p.logger.Info("No articles requested", logfields.Count(requested))
		} else {
			p.logger.Info("Daily quota reached", logfields.Count(used))
		}
		return report, nil
	}

	now := p.cfg.Now()
	failures := p.loadFailures()

	slugs, err := ReadQueue(p.cfg.Resolve(p.cfg.Paths.PublishQueue))
	if err != nil {
		return report, err
	}

	var selected []*article.Article
	for _, slug := range slugs {
		if len(selected) >= report.Effective {
			break
		}
		a, err := p.repo.Find(slug)
		if err != nil {
			if !errors.Is(err, article.ErrNotFound) {
				p.logger.Warn("Skipping unreadable article", logfields.Slug(slug), logfields.Error(err))
			}
			continue
		}
		if !a.IsDraft() {
			continue
		}
		if failures.InCooldown(slug, p.cfg.Publish.Cooldown, now) {
			report.Cooldown = append(report.Cooldown, slug)
			continue
		}
		selected = append(selected, a)
		report.Selected = append(report.Selected, slug)
	}

	if opts.DryRun {
		return report, nil
	}

	for _, a := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := publish(a); err != nil {
			p.logger.Warn("Failed to publish article", logfields.Slug(a.Slug), logfields.Error(err))
			report.Failed = append(report.Failed, ItemError{Slug: a.Slug, Err: err})
			continue
		}
		p.logger.Info("Published article", logfields.Slug(a.Slug), logfields.File(a.RelPath))
		report.Published = append(report.Published, a.Slug)
	}
	p.recorder.AddPublished(len(report.Published))
	return report, nil
}

func publish(a *article.Article) error {
	if err := a.Publish(); err != nil {
		return err
	}
	return a.Save()
}

// loadFailures reads the failure log for the cooldown gate. A corrupt log
// disables the gate for this run.
func (p *Publisher) loadFailures() *state.FailureLog {
	file := p.cfg.Resolve(p.cfg.Paths.FailureLog)
	log, err := state.LoadFailureLog(file, p.cfg.Location())
	if err != nil {
		p.logger.Warn("Ignoring unreadable failure log", logfields.Path(file), logfields.Error(err))
		return state.NewFailureLog(file, p.cfg.Location())
	}
	return log
}
