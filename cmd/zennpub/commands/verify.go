package commands

import (
	"context"

	"github.com/correlate-dev/zennpub/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Fix bool `help:"Roll back articles that are not live and queue them for retry"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	env, err := start(root, g, "verify")
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer env.Close(context.Background())

	return env.observe(func() error {
		return env.withLock(func() error { return runVerify(ctx, env, verify.Options{Fix: v.Fix}) })
	})
}

func runVerify(ctx context.Context, env *runEnv, opts verify.Options) error {
	v := verify.New(env.cfg, env.history(), env.prober(),
		verify.WithLogger(env.logger),
		verify.WithRecorder(env.recorder),
		verify.WithEvents(env.events),
		verify.WithNotifier(env.notifier()))
	report, err := v.Run(ctx, opts)
	if report != nil {
		report.Print(env.out)
	}
	return stateError(err, "verify")
}
