package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/correlate-dev/zennpub/internal/config"
	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/metrics"
	"github.com/correlate-dev/zennpub/internal/publisher"
	"github.com/correlate-dev/zennpub/internal/scheduler"
	"github.com/correlate-dev/zennpub/internal/verify"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	Watch       bool          `default:"true" negatable:"" help:"Reload schedules when the config file changes"`
	Debounce    time.Duration `default:"2s" help:"Config reload debounce"`
}

// liveConfig is the configuration shared by scheduled runs; reloads swap it.
type liveConfig struct {
	mu  sync.RWMutex
	cfg *config.Config
}

func (l *liveConfig) get() *config.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *liveConfig) set(cfg *config.Config) {
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
}

func (s *ScheduleCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	base := newEnv(cfg, g, "schedule")
	if s.MetricsAddr != "" && base.registry == nil {
		base.registry = prom.NewRegistry()
		base.recorder = metrics.NewPrometheusRecorder(base.registry)
	}

	ctx, stop := signalContext()
	defer stop()
	defer base.Close(context.Background())

	live := &liveConfig{cfg: cfg}
	sched, err := scheduler.New(ctx, cfg.Location(), base.logger)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "create scheduler").Build()
	}
	if err := sched.Replace(stageJobs(base, live)); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid schedule").Build()
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			base.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}()
	logNextRuns(base.logger, sched)

	if s.Watch {
		path := root.Config
		if path == "" {
			path = filepath.Join(cfg.Workspace, config.DefaultFileName)
		}
		reload := func(context.Context) error {
			next, err := root.LoadConfig()
			if err != nil {
				return err
			}
			live.set(next)
			if err := sched.Replace(stageJobs(base, live)); err != nil {
				return err
			}
			logNextRuns(base.logger, sched)
			return nil
		}
		watcher, err := scheduler.NewConfigWatcher(path, s.Debounce, reload, base.logger)
		if err != nil {
			base.logger.Warn("Config watching disabled", logfields.Path(path), logfields.Error(err))
		} else {
			go watcher.Run(ctx)
		}
	}

	if s.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              s.MetricsAddr,
			Handler:           metricsMux(base.registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			base.logger.Info("Serving metrics", slog.String("addr", s.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				base.logger.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Fprintln(base.out, "scheduler running; press Ctrl+C to stop")
	<-ctx.Done()
	base.logger.Info("Shutting down scheduler")
	return nil
}

func metricsMux(reg *prom.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// stageJobs builds the publish, verify and retry jobs from the current config.
// Each run gets its own run id and takes the state lock.
func stageJobs(base *runEnv, live *liveConfig) []scheduler.Job {
	cfg := live.get()
	job := func(name string, fn func(ctx context.Context, env *runEnv) error) scheduler.Job {
		return scheduler.Job{
			Name: name,
			Run: func(ctx context.Context) error {
				env := base.child(live.get(), name, uuid.NewString())
				// metrics accumulate in the shared registry until exit
				env.push = false
				return env.observe(func() error {
					return env.withLock(func() error { return fn(ctx, env) })
				})
			},
		}
	}

	publish := job("publish", func(ctx context.Context, env *runEnv) error {
		return runPublish(ctx, env, publisher.Options{})
	})
	publish.Cron = cfg.Schedule.Publish

	verifyJob := job("verify", func(ctx context.Context, env *runEnv) error {
		return runVerify(ctx, env, verify.Options{Fix: true})
	})
	verifyJob.Cron = cfg.Schedule.Verify

	retryJob := job("retry", func(ctx context.Context, env *runEnv) error {
		return runRetry(ctx, env, 0)
	})
	retryJob.Cron = cfg.Schedule.Retry

	return []scheduler.Job{publish, verifyJob, retryJob}
}

func logNextRuns(logger *slog.Logger, sched *scheduler.Scheduler) {
	for name, next := range sched.NextRuns() {
		logger.Info("Next run", slog.String("job", name), slog.Time("at", next))
	}
}
