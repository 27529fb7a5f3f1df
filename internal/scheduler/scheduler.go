// Package scheduler runs the publishing stages in-process on cron expressions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/correlate-dev/zennpub/internal/logfields"
)

const stageTag = "stage"

// Job is one scheduled stage.
type Job struct {
	Name string
	Cron string
	Run  func(ctx context.Context) error
}

// Scheduler wraps a gocron scheduler. Every job runs in singleton mode so a
// slow run is never overlapped by the next tick.
type Scheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	logger    *slog.Logger
}

// New creates a scheduler evaluating cron expressions in loc. Job runs
// receive ctx; cancel it to abort in-flight runs.
func New(ctx context.Context, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, err error) {
					logger.Error("Scheduled job failed", slog.String("job", name), logfields.Error(err))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, ctx: ctx, logger: logger}, nil
}

// ScheduleCron registers fn under name on a five-field cron expression and
// returns the job id.
func (s *Scheduler) ScheduleCron(name, expr string, fn func(ctx context.Context) error) (string, error) {
	if strings.TrimSpace(expr) == "" {
		return "", fmt.Errorf("job %s: empty cron expression", name)
	}
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(s.task(name, fn)),
		gocron.WithName(name),
		gocron.WithTags(stageTag),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create cron job %s: %w", name, err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) task(name string, fn func(ctx context.Context) error) func() error {
	return func() error {
		start := time.Now()
		s.logger.Info("Executing scheduled job", slog.String("job", name))
		err := fn(s.ctx)
		s.logger.Info("Scheduled job finished", slog.String("job", name), logfields.Duration(time.Since(start)))
		return err
	}
}

// Replace removes every registered stage job and registers jobs. Jobs with
// an empty expression are skipped. All expressions are checked before the
// current jobs are dropped.
func (s *Scheduler) Replace(jobs []Job) error {
	var errs []error
	for _, j := range jobs {
		if strings.TrimSpace(j.Cron) == "" {
			continue
		}
		if err := ValidateCron(j.Cron); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", j.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.scheduler.RemoveByTags(stageTag)
	for _, j := range jobs {
		if strings.TrimSpace(j.Cron) == "" {
			s.logger.Info("Job disabled", slog.String("job", j.Name))
			continue
		}
		if _, err := s.ScheduleCron(j.Name, j.Cron, j.Run); err != nil {
			return err
		}
		s.logger.Info("Job scheduled", slog.String("job", j.Name), slog.String("cron", j.Cron))
	}
	return nil
}

// NextRuns returns the next run time of each job by name.
func (s *Scheduler) NextRuns() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, j := range s.scheduler.Jobs() {
		if next, err := j.NextRun(); err == nil {
			out[j.Name()] = next
		}
	}
	return out
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ValidateCron checks a five-field cron expression without scheduling it.
func ValidateCron(expr string) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	defer func() { _ = s.Shutdown() }()
	if _, err := s.NewJob(gocron.CronJob(expr, false), gocron.NewTask(func() {})); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
