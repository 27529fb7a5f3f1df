package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/correlate-dev/zennpub/internal/config"
	"github.com/correlate-dev/zennpub/internal/events"
	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/history"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/metrics"
	"github.com/correlate-dev/zennpub/internal/notify"
	"github.com/correlate-dev/zennpub/internal/probe"
	"github.com/correlate-dev/zennpub/internal/state"
)

// Global carries per-process values into every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	RunID  string
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: <workspace>/zennpub.yaml when present)" type:"path"`
	Workspace string           `help:"Content repository root (overrides GITHUB_WORKSPACE)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Validate        ValidateCmd        `cmd:"" help:"Validate article front matter"`
	Publish         PublishCmd         `cmd:"" help:"Publish queued drafts within the daily quota"`
	Verify          VerifyCmd          `cmd:"" help:"Check that published articles are live"`
	Retry           RetryCmd           `cmd:"" help:"Reschedule queued retries into free slots"`
	NotifyPublished NotifyPublishedCmd `cmd:"" name:"notify-published" help:"Announce published articles on the webhook"`
	Schedule        ScheduleCmd        `cmd:"" help:"Run publish, verify and retry on their cron schedules"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads configuration using the global flags.
func (c *CLI) LoadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{Path: c.Config, Workspace: c.Workspace})
}

// runEnv holds the collaborators one command run needs.
type runEnv struct {
	cfg      *config.Config
	command  string
	runID    string
	logger   *slog.Logger
	out      io.Writer
	registry *prom.Registry
	recorder metrics.Recorder
	events   events.Publisher
	// push is false when a long-running process serves the registry itself.
	push bool
}

// newEnv wires metrics and events for cfg. Close must be called.
func newEnv(cfg *config.Config, g *Global, command string) *runEnv {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	env := &runEnv{
		cfg:      cfg,
		command:  command,
		runID:    g.RunID,
		logger:   logger.With(logfields.RunID(g.RunID), logfields.Command(command)),
		out:      g.Stdout,
		recorder: metrics.NoopRecorder{},
		events:   events.Noop{},
		push:     cfg.Metrics.PushgatewayURL != "",
	}
	if env.out == nil {
		env.out = os.Stdout
	}
	if env.push {
		env.registry = prom.NewRegistry()
		env.recorder = metrics.NewPrometheusRecorder(env.registry)
	}
	pub, err := events.Connect(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		// events are best effort
		env.logger.Warn("Event publishing disabled", logfields.Error(err))
	} else {
		env.events = events.WithRunID(pub, g.RunID)
	}
	return env
}

// child returns an env for one scheduled run sharing metrics and events.
func (e *runEnv) child(cfg *config.Config, command, runID string) *runEnv {
	c := *e
	c.cfg = cfg
	c.command = command
	c.runID = runID
	c.logger = e.logger.With(logfields.RunID(runID), logfields.Command(command))
	c.events = events.WithRunID(e.events, runID)
	return &c
}

// Close flushes events and pushes metrics when configured.
func (e *runEnv) Close(ctx context.Context) {
	if err := e.events.Close(); err != nil {
		e.logger.Warn("Failed to close event publisher", logfields.Error(err))
	}
	if !e.push {
		return
	}
	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := metrics.Push(pushCtx, e.cfg.Metrics.PushgatewayURL, e.cfg.Metrics.Job, e.registry, map[string]string{"command": e.command}); err != nil {
		e.logger.Warn("Failed to push metrics", logfields.Error(err))
	}
}

// observe records the outcome and duration of fn.
func (e *runEnv) observe(fn func() error) error {
	start := time.Now()
	err := fn()
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	e.recorder.IncRunOutcome(e.command, outcome)
	e.recorder.ObserveRunDuration(e.command, time.Since(start))
	e.logger.Info("Run finished", logfields.Status(outcome), logfields.Duration(time.Since(start)))
	return err
}

// withLock runs fn while holding the state lock.
func (e *runEnv) withLock(fn func() error) error {
	lock, err := state.AcquireLock(e.cfg.Resolve(e.cfg.Paths.LockFile))
	if errors.Is(err, state.ErrLocked) {
		return foundationerrors.LockedError("state is locked by another run").WithCause(err).
			WithContext("lock", e.cfg.Paths.LockFile).
			WithHint("wait for the running zennpub command to finish").Build()
	}
	if err != nil {
		return stateError(err, "acquire lock")
	}
	defer func() {
		if err := lock.Release(); err != nil {
			e.logger.Warn("Failed to release lock", logfields.Error(err))
		}
	}()
	return fn()
}

// history opens the workspace repository. A workspace that is not a git
// repository yields a Source that fails every query.
func (e *runEnv) history() history.Source {
	src, err := history.OpenGit(e.cfg.Workspace, e.cfg.Now)
	if err != nil {
		e.logger.Warn("Git history unavailable", logfields.Path(e.cfg.Workspace), logfields.Error(err))
		return history.Unavailable{Err: err}
	}
	return src
}

func (e *runEnv) prober() *probe.Prober {
	z := e.cfg.Zenn
	return probe.New(z.BaseURL, z.Username, z.ProbeTimeout, probe.WithUserAgent(z.UserAgent))
}

func (e *runEnv) notifier() notify.Service {
	return notify.NewService(notify.Config{
		WebhookURL: e.cfg.Notify.WebhookURL,
		Timeout:    e.cfg.Notify.Timeout,
		Retry:      e.cfg.RetryPolicy(),
		ArticleURL: e.prober().URL,
		Threshold:  e.cfg.Verify.FailureThreshold,
	}, e.logger)
}

func stateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := foundationerrors.AsClassified(err); ok {
		return err
	}
	return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, fmt.Sprintf("%s failed", what)).Build()
}

// start loads config and opens the run environment for a one-shot command.
func start(root *CLI, g *Global, command string) (*runEnv, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	return newEnv(cfg, g, command), nil
}
