package commands

import (
	"context"
	"fmt"
	"strings"

	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/logfields"
)

// NotifyPublishedCmd implements the 'notify-published' command.
type NotifyPublishedCmd struct {
	Slugs []string `env:"PUBLISHED_SLUGS" sep:"," help:"Published slugs (comma separated)"`
}

func (n *NotifyPublishedCmd) Run(g *Global, root *CLI) error {
	env, err := start(root, g, "notify-published")
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer env.Close(context.Background())

	slugs := cleanSlugs(n.Slugs)
	if len(slugs) == 0 || env.cfg.Notify.WebhookURL == "" {
		fmt.Fprintln(env.out, "notification skipped (no slugs or no webhook configured)")
		return nil
	}
	return env.observe(func() error {
		if err := env.notifier().NotifyPublished(ctx, slugs); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryNetwork, "publish notification failed").
				WithContext("count", len(slugs)).Build()
		}
		env.logger.Info("Publish notification sent", logfields.Count(len(slugs)))
		fmt.Fprintf(env.out, "notified %d articles\n", len(slugs))
		return nil
	})
}

func cleanSlugs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
