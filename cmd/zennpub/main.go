package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/correlate-dev/zennpub/cmd/zennpub/commands"
	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("zennpub"),
		kong.Description("Publish, verify and retry Zenn articles from a git-managed content repository."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{
		Logger: slog.Default(),
		Stdout: os.Stdout,
		RunID:  uuid.NewString(),
	}
	if err := ctx.Run(global, &cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
