package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/correlate-dev/zennpub/internal/article"
	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/validate"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Fix    bool   `help:"Repair header problems in place"`
	DryRun bool   `name:"dry-run" help:"With --fix, report repairs without writing files"`
	CI     bool   `name:"ci" help:"Exit non-zero when error-level issues are found"`
	Format string `short:"f" enum:"text,json" default:"text" help:"Output format (text, json)"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	env, err := start(root, g, "validate")
	if err != nil {
		return err
	}
	defer env.Close(context.Background())

	return env.observe(func() error { return v.run(env) })
}

func (v *ValidateCmd) run(env *runEnv) error {
	repo := article.NewRepository(env.cfg.ArticlesDir(), env.cfg.Workspace, env.cfg.Location(), env.logger)
	articles, err := repo.List()
	if errors.Is(err, fs.ErrNotExist) {
		return foundationerrors.ConfigError("articles directory not found").WithCause(err).
			WithContext("dir", env.cfg.Paths.Articles).
			WithHint("set paths.articles or run from the content repository root").Build()
	}
	if err != nil {
		return stateError(err, "list articles")
	}
	validator := validate.NewValidator(env.cfg.Frontmatter)

	// --fix takes precedence over --ci.
	if v.Fix {
		if v.CI {
			env.logger.Warn("--ci is ignored with --fix")
		}
		return v.fix(env, validator, articles)
	}

	result := validator.Validate(articles)
	warnings := result.Total() - result.ErrorCount()
	env.recorder.AddValidationIssues("error", result.ErrorCount())
	env.recorder.AddValidationIssues("warning", warnings)
	env.logger.Info("Validation finished",
		logfields.Count(result.FilesTotal),
		logfields.Status(fmt.Sprintf("%d errors, %d warnings", result.ErrorCount(), warnings)))

	var formatter validate.Formatter = validate.NewTextFormatter()
	if strings.EqualFold(v.Format, "json") {
		formatter = validate.NewJSONFormatter()
	}
	if err := formatter.Format(env.out, result); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "write report").Build()
	}

	if v.CI && result.HasErrors() {
		return foundationerrors.ValidationError(fmt.Sprintf("%d front matter errors found", result.ErrorCount())).
			WithContext("articles", result.FilesTotal).Build()
	}
	return nil
}

func (v *ValidateCmd) fix(env *runEnv, validator *validate.Validator, articles []*article.Article) error {
	result := validate.NewFixer(validator, v.DryRun, env.logger).Fix(articles)
	if err := validate.NewTextFormatter().FormatFix(env.out, result); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "write report").Build()
	}
	// fix mode never fails the run; write errors are reported above
	if result.HasErrors() {
		env.logger.Warn("Some articles could not be written", logfields.Count(len(result.Errors)))
	}
	return nil
}
