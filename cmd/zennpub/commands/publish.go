package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/correlate-dev/zennpub/internal/publisher"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Count  int  `default:"-1" help:"Number of drafts to publish (negative uses the configured count)"`
	DryRun bool `name:"dry-run" help:"Select drafts without modifying files"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	env, err := start(root, g, "publish")
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer env.Close(context.Background())

	return env.observe(func() error {
		return env.withLock(func() error { return runPublish(ctx, env, p.options()) })
	})
}

func (p *PublishCmd) options() publisher.Options {
	opts := publisher.Options{DryRun: p.DryRun}
	if p.Count >= 0 {
		opts.Count = &p.Count
	}
	return opts
}

func runPublish(ctx context.Context, env *runEnv, opts publisher.Options) error {
	pub := publisher.New(env.cfg, env.history(),
		publisher.WithLogger(env.logger),
		publisher.WithRecorder(env.recorder))
	report, err := pub.Run(ctx, opts)
	if err != nil {
		return stateError(err, "publish")
	}
	report.Print(env.out)
	if len(report.Published) > 0 {
		fmt.Fprintf(env.out, "published=%s\n", strings.Join(report.Published, ","))
	}
	return nil
}
