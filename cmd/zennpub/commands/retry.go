package commands

import (
	"context"

	"github.com/correlate-dev/zennpub/internal/dispatch"
)

// RetryCmd implements the 'retry' command.
type RetryCmd struct {
	Max int `help:"Maximum entries to reschedule (default from config)"`
}

func (r *RetryCmd) Run(g *Global, root *CLI) error {
	env, err := start(root, g, "retry")
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer env.Close(context.Background())

	return env.observe(func() error {
		return env.withLock(func() error { return runRetry(ctx, env, r.Max) })
	})
}

func runRetry(ctx context.Context, env *runEnv, limit int) error {
	d := dispatch.New(env.cfg,
		dispatch.WithLogger(env.logger),
		dispatch.WithRecorder(env.recorder),
		dispatch.WithEvents(env.events))
	report, err := d.Run(ctx, limit)
	if report != nil {
		report.Print(env.out)
	}
	return stateError(err, "retry")
}
