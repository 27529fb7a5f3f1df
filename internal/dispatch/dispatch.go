// Package dispatch reschedules queued retries into free publication slots.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/config"
	"github.com/correlate-dev/zennpub/internal/events"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/metrics"
	"github.com/correlate-dev/zennpub/internal/state"
)

// Assignment is a retry entry given a slot.
type Assignment struct {
	Slug string
	File string
	Slot time.Time
}

// ItemError is a per-entry failure. It never aborts the run.
type ItemError struct {
	Slug string
	Err  error
}

// Report summarizes a dispatch run.
type Report struct {
	QueueBefore int
	Assigned    []Assignment
	Missing     []string
	Failed      []ItemError
	// Deferred entries found no slot and stay at the head of the queue.
	Deferred  []string
	Remaining int
	loc       *time.Location
}

// Print writes human-readable status lines.
func (r *Report) Print(w io.Writer) {
	if r.QueueBefore == 0 {
		fmt.Fprintln(w, "retry queue is empty")
		return
	}
	fmt.Fprintf(w, "retry queue: %d entries\n", r.QueueBefore)
	for _, a := range r.Assigned {
		fmt.Fprintf(w, "  ✅ %s: scheduled for %s\n", a.Slug, article.FormatTime(a.Slot, r.loc))
	}
	for _, s := range r.Missing {
		fmt.Fprintf(w, "  ❌ %s: file not found\n", s)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  ❌ %s: %v\n", f.Slug, f.Err)
	}
	for _, s := range r.Deferred {
		fmt.Fprintf(w, "  ⏳ %s: no free slot, kept in queue\n", s)
	}
	fmt.Fprintf(w, "remaining in retry queue: %d\n", r.Remaining)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(d *Dispatcher) { d.recorder = r } }

// WithEvents sets the event publisher.
func WithEvents(p events.Publisher) Option { return func(d *Dispatcher) { d.events = p } }

// Dispatcher moves retry queue entries back onto the publishing schedule.
type Dispatcher struct {
	cfg      *config.Config
	repo     *article.Repository
	logger   *slog.Logger
	recorder metrics.Recorder
	events   events.Publisher
}

// New returns a Dispatcher for cfg.
func New(cfg *config.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		events:   events.Noop{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.repo = article.NewRepository(cfg.ArticlesDir(), cfg.Workspace, cfg.Location(), d.logger)
	return d
}

// Run pops up to limit entries (the configured max when limit <= 0), gives
// each loadable article the next free slot and saves the queue. Processed
// entries leave the queue whether or not their file exists.
func (d *Dispatcher) Run(ctx context.Context, limit int) (*Report, error) {
	if limit <= 0 {
		limit = d.cfg.Dispatch.Max
	}
	loc := d.cfg.Location()
	now := d.cfg.Now()

	queue, err := state.LoadRetryQueue(d.cfg.Resolve(d.cfg.Paths.RetryQueue), loc)
	if err != nil {
		return nil, fmt.Errorf("load retry queue: %w", err)
	}
	report := &Report{QueueBefore: queue.Len(), loc: loc}
	if queue.Len() == 0 {
		d.recorder.SetRetryQueueLength(0)
		return report, nil
	}

	all, err := d.repo.List()
	if err != nil {
		return nil, err
	}
	times, err := d.cfg.Dispatch.SlotTimes()
	if err != nil {
		return nil, err
	}

	popped := queue.Pop(limit)
	type pending struct {
		entry state.RetryEntry
		art   *article.Article
	}
	var work []pending
	for _, e := range popped {
		a, err := d.open(e)
		if err != nil {
			if errors.Is(err, article.ErrNotFound) {
				d.logger.Warn("Retry entry file not found", logfields.Slug(e.Slug), logfields.File(e.File))
				report.Missing = append(report.Missing, e.Slug)
			} else {
				report.Failed = append(report.Failed, ItemError{Slug: e.Slug, Err: err})
			}
			continue
		}
		work = append(work, pending{entry: e, art: a})
	}

	slots := NextSlots(article.ScheduledTimes(all), now, len(work), SlotConfig{
		Times:       times,
		HorizonDays: d.cfg.Dispatch.HorizonDays,
		MaxPerDay:   d.cfg.Frontmatter.MaxPerDay,
	})

	var deferred []state.RetryEntry
	for i, p := range work {
		if i >= len(slots) || ctx.Err() != nil {
			deferred = append(deferred, p.entry)
			report.Deferred = append(report.Deferred, p.entry.Slug)
			continue
		}
		slot := slots[i]
		if err := d.schedule(p.art, slot); err != nil {
			report.Failed = append(report.Failed, ItemError{Slug: p.entry.Slug, Err: err})
			continue
		}
		d.logger.Info("Rescheduled article", logfields.Slug(p.entry.Slug), logfields.Slot(article.FormatTime(slot, loc)))
		report.Assigned = append(report.Assigned, Assignment{Slug: p.entry.Slug, File: p.art.RelPath, Slot: slot})
		d.publish(ctx, events.Event{
			Kind:        events.KindRescheduled,
			Slug:        p.entry.Slug,
			Title:       p.entry.Title,
			File:        p.art.RelPath,
			Fingerprint: p.art.Fingerprint(),
			Slot:        article.FormatTime(slot, loc),
			OccurredAt:  now,
		})
	}

	queue.PushFront(deferred...)
	if err := queue.Save(); err != nil {
		return report, fmt.Errorf("save retry queue: %w", err)
	}
	report.Remaining = queue.Len()
	d.recorder.AddRescheduled(len(report.Assigned))
	d.recorder.SetRetryQueueLength(queue.Len())
	return report, nil
}

func (d *Dispatcher) open(e state.RetryEntry) (*article.Article, error) {
	if e.File != "" {
		return d.repo.Open(e.File)
	}
	return d.repo.Find(e.Slug)
}

func (d *Dispatcher) schedule(a *article.Article, slot time.Time) error {
	if err := a.Schedule(slot); err != nil {
		return err
	}
	return a.Save()
}

func (d *Dispatcher) publish(ctx context.Context, ev events.Event) {
	if err := d.events.Publish(ctx, ev); err != nil {
		d.logger.Warn("Failed to publish event", logfields.Slug(ev.Slug), logfields.Error(err))
	}
}
