// Package verify confirms that published articles are live on Zenn and
// rolls back the ones that are not.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/config"
	"github.com/correlate-dev/zennpub/internal/events"
	"github.com/correlate-dev/zennpub/internal/history"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/metrics"
	"github.com/correlate-dev/zennpub/internal/notify"
	"github.com/correlate-dev/zennpub/internal/probe"
	"github.com/correlate-dev/zennpub/internal/state"
)

// State is the verification state an article ended in.
type State string

const (
	StateNotApplicable   State = "not-applicable"
	StateScheduledFuture State = "scheduled-future"
	StateGracePeriod     State = "grace-period"
	StateConfirmed       State = "confirmed"
	StateNetworkError    State = "network-error"
	StateNotFound        State = "not-found"
)

// Options control a single run.
type Options struct {
	// Fix rolls back missing articles and queues them for retry.
	Fix bool
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(v *Verifier) { v.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(v *Verifier) { v.recorder = r } }

// WithEvents sets the event publisher.
func WithEvents(p events.Publisher) Option { return func(v *Verifier) { v.events = p } }

// WithNotifier sets the webhook notifier.
func WithNotifier(n notify.Service) Option { return func(v *Verifier) { v.notifier = n } }

// Verifier walks published articles and probes each one.
type Verifier struct {
	cfg      *config.Config
	history  history.Source
	prober   probe.Checker
	repo     *article.Repository
	logger   *slog.Logger
	recorder metrics.Recorder
	events   events.Publisher
	notifier notify.Service
}

// New returns a Verifier. src supplies last-edit times for the grace period.
func New(cfg *config.Config, src history.Source, prober probe.Checker, opts ...Option) *Verifier {
	v := &Verifier{
		cfg:      cfg,
		history:  src,
		prober:   prober,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		events:   events.Noop{},
		notifier: notify.Noop{},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.repo = article.NewRepository(cfg.ArticlesDir(), cfg.Workspace, cfg.Location(), v.logger)
	return v
}

// Run verifies every article once and persists the failure log and retry queue.
func (v *Verifier) Run(ctx context.Context, opts Options) (*Report, error) {
	loc := v.cfg.Location()
	now := v.cfg.Now()
	report := &Report{Fix: opts.Fix, StartedAt: now}

	failures, err := state.LoadFailureLog(v.cfg.Resolve(v.cfg.Paths.FailureLog), loc)
	if err != nil {
		return nil, fmt.Errorf("load failure log: %w", err)
	}
	queue, err := state.LoadRetryQueue(v.cfg.Resolve(v.cfg.Paths.RetryQueue), loc)
	if err != nil {
		return nil, fmt.Errorf("load retry queue: %w", err)
	}
	articles, err := v.repo.List()
	if err != nil {
		return nil, err
	}

	var newlyFailed []notify.Failure
	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}
		res := v.check(ctx, a, now)
		if res.State == StateNotFound {
			f := failures.Record(a.Slug, now)
			res.Failures = f.Count
			newlyFailed = append(newlyFailed, notify.Failure{Slug: a.Slug, Title: titleOr(a)})
			if opts.Fix {
				v.rollback(a, &res, queue, now)
			}
			v.emitFailure(ctx, a, res, now)
		}
		if res.State == StateConfirmed {
			res.Cleared = failures.Clear(a.Slug)
		}
		report.add(res)
	}

	report.Evicted = failures.EvictAtLeast(v.cfg.Verify.FailureThreshold)
	for _, slug := range report.Evicted {
		v.logger.Warn("Article needs manual handling", logfields.Slug(slug), slog.Int("threshold", v.cfg.Verify.FailureThreshold))
	}
	for _, e := range queue.PruneOlderThan(v.cfg.Verify.RetryMaxAge, now) {
		report.Pruned = append(report.Pruned, e.Slug)
	}

	if err := failures.Save(); err != nil {
		return report, fmt.Errorf("save failure log: %w", err)
	}
	if err := queue.Save(); err != nil {
		return report, fmt.Errorf("save retry queue: %w", err)
	}
	report.QueueLength = queue.Len()

	if err := v.notifier.NotifyFailures(ctx, newlyFailed); err != nil {
		v.logger.Error("Failure notification not delivered", logfields.Error(err))
	}
	if err := v.notifier.NotifyManualIntervention(ctx, report.Evicted); err != nil {
		v.logger.Error("Manual intervention notification not delivered", logfields.Error(err))
	}

	v.recorder.AddRolledBack(report.RolledBack)
	v.recorder.SetRetryQueueLength(report.QueueLength)
	return report, ctx.Err()
}

func (v *Verifier) check(ctx context.Context, a *article.Article, now time.Time) Result {
	res := Result{Slug: a.Slug, File: a.RelPath}
	if published, known := a.Published(); !known || !published {
		res.State = StateNotApplicable
		return res
	}
	if at, ok := a.PublishedAt(); ok && at.After(now) {
		res.State = StateScheduledFuture
		return res
	}

	modified, err := v.history.LastModified(ctx, a.RelPath)
	switch {
	case err == nil:
		if now.Sub(modified) < v.cfg.Verify.GracePeriod {
			res.State = StateGracePeriod
			return res
		}
	case errors.Is(err, history.ErrNoHistory):
	default:
		v.logger.Debug("Last edit time unavailable", logfields.Slug(a.Slug), logfields.Error(err))
	}

	out := v.prober.Check(ctx, a.Slug)
	res.URL = out.URL
	switch out.Status {
	case probe.Confirmed:
		res.State = StateConfirmed
		v.recorder.IncProbe(metrics.ProbeConfirmed)
	case probe.NotFound:
		res.State = StateNotFound
		res.Err = out.Err
		v.recorder.IncProbe(metrics.ProbeNotFound)
		v.logger.Warn("Article not live", logfields.Slug(a.Slug), logfields.URL(out.URL), slog.Int("status_code", out.StatusCode))
	default:
		res.State = StateNetworkError
		res.Err = out.Err
		v.recorder.IncProbe(metrics.ProbeInconclusive)
		v.logger.Warn("Probe inconclusive", logfields.Slug(a.Slug), logfields.Error(out.Err))
	}
	return res
}

func (v *Verifier) rollback(a *article.Article, res *Result, queue *state.RetryQueue, now time.Time) {
	if err := a.Rollback(); err != nil {
		res.Err = err
		return
	}
	if err := a.Save(); err != nil {
		res.Err = fmt.Errorf("save rollback: %w", err)
		return
	}
	res.RolledBack = true
	res.Queued = queue.Add(state.RetryEntry{Slug: a.Slug, Title: titleOr(a), File: a.RelPath, DetectedAt: now})
	v.logger.Info("Rolled back to draft", logfields.Slug(a.Slug), logfields.File(a.RelPath))
}

func (v *Verifier) emitFailure(ctx context.Context, a *article.Article, res Result, now time.Time) {
	kind := events.KindUnpublished
	if res.RolledBack {
		kind = events.KindRolledBack
	}
	ev := events.Event{
		Kind:        kind,
		Slug:        a.Slug,
		Title:       titleOr(a),
		File:        a.RelPath,
		URL:         res.URL,
		Fingerprint: a.Fingerprint(),
		Failures:    res.Failures,
		OccurredAt:  now,
	}
	if err := v.events.Publish(ctx, ev); err != nil {
		v.logger.Warn("Failed to publish event", logfields.Slug(a.Slug), logfields.Error(err))
	}
}

func titleOr(a *article.Article) string {
	if t := a.Title(); t != "" {
		return t
	}
	return a.Slug
}
