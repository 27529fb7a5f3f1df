package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlate-dev/zennpub/internal/config"
	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/state"
	helpers "github.com/correlate-dev/zennpub/internal/testutil/testutils"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvWorkspace, config.EnvWebhook, config.EnvWebhookFallback,
		config.EnvNATSURL, config.EnvPushgatewayURL, "PUBLISHED_SLUGS",
	} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runLogged(t, args...)
	return out, err
}

// runLogged is run that also returns the log output.
func runLogged(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("zennpub"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out, logs bytes.Buffer
	global := &Global{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
		Stdout: &out,
		RunID:  "test-run",
	}
	err = ctx.Run(global, &cli)
	return out.String(), logs.String(), err
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping permission-dependent test when running as root")
	}
}

// looseArticle is a draft with an unquoted title that --fix repairs.
func looseArticle() string {
	return strings.Replace(helpers.Draft("Loose"), `"Loose"`, "Loose", 1)
}

func exitCode(err error) int {
	return foundationerrors.NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil))).ExitCodeFor(err)
}

func TestValidate_AllPass(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	ws.WriteArticle("good", helpers.Draft("Good article"))

	out, err := run(t, "--workspace", ws.Root, "validate", "--ci")
	require.NoError(t, err)
	assert.Contains(t, out, "ALL PASS")
}

func TestValidate_CIFailsOnErrors(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	ws.WriteArticle("broken", "---\ntitle: \"Broken\"\npublished: false\n---\nbody\n")

	out, err := run(t, "--workspace", ws.Root, "validate", "--ci")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "broken.md")

	// without --ci the report is printed and the run succeeds
	_, err = run(t, "--workspace", ws.Root, "validate")
	assert.NoError(t, err)
}

func TestValidate_FixWinsOverCI(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	ws.WriteArticle("loose", looseArticle())

	out, logs, err := runLogged(t, "--workspace", ws.Root, "validate", "--fix", "--ci")
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode(err))
	assert.Contains(t, out, "FIXED: loose.md")
	assert.Contains(t, logs, "--ci is ignored with --fix")
	ws.Article("loose").Contains(`title: "Loose"`)
}

func TestValidate_FixWriteFailureDoesNotFail(t *testing.T) {
	skipIfRoot(t)
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	path := ws.WriteArticle("loose", looseArticle())
	// #nosec G302 -- intentional read-only permission for test setup
	require.NoError(t, os.Chmod(path, 0o444))
	t.Cleanup(func() { _ = os.Chmod(path, 0o600) })

	out, logs, err := runLogged(t, "--workspace", ws.Root, "validate", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "no files fixed")
	assert.Contains(t, out, "FAILED: fix loose.md")
	assert.NotContains(t, out, "nothing to fix")
	assert.Contains(t, logs, "Some articles could not be written")
	assert.Equal(t, looseArticle(), ws.ReadArticle("loose"))
}

func TestValidate_JSONFormat(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	ws.WriteArticle("good", helpers.Draft("Good article"))

	out, err := run(t, "--workspace", ws.Root, "validate", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "{")
}

func TestPublish_WithoutGitHistoryPublishesNothing(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	ws.WriteArticle("draft", helpers.Draft("Draft"))
	ws.WriteFile("scripts/publish-queue.txt", "draft\n")

	out, err := run(t, "--workspace", ws.Root, "publish")
	require.NoError(t, err)
	assert.Contains(t, out, "rate limit reached")
	assert.Equal(t, helpers.Draft("Draft"), ws.ReadArticle("draft"))
}

func TestPublish_LockedState(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	lock, err := state.AcquireLock(ws.Config.Resolve(ws.Config.Paths.LockFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	_, err = run(t, "--workspace", ws.Root, "publish")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))
}

func TestRetry_EmptyQueue(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())

	out, err := run(t, "--workspace", ws.Root, "retry")
	require.NoError(t, err)
	assert.Contains(t, out, "retry queue is empty")
	ws.AssertMissing(ws.Config.Paths.RetryQueue)
}

func TestNotifyPublished_SkipsWithoutWebhook(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())

	out, err := run(t, "--workspace", ws.Root, "notify-published", "--slugs", "a,b")
	require.NoError(t, err)
	assert.Contains(t, out, "notification skipped")
}

func TestConfigError_ExitCode(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())

	_, err := run(t, "--workspace", ws.Root, "--config", ws.Root+"/missing.yaml", "retry")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestValidate_MissingArticlesDir(t *testing.T) {
	isolateEnv(t)
	ws := helpers.NewWorkspace(t, time.Now())
	require.NoError(t, os.RemoveAll(ws.Config.ArticlesDir()))

	_, err := run(t, "--workspace", ws.Root, "validate")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestPublish_CountFlag(t *testing.T) {
	parse := func(args ...string) PublishCmd {
		var cli CLI
		parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
		require.NoError(t, err)
		_, err = parser.Parse(append([]string{"publish"}, args...))
		require.NoError(t, err)
		return cli.Publish
	}

	cmd := parse()
	assert.Nil(t, cmd.options().Count)

	cmd = parse("--count", "0")
	require.NotNil(t, cmd.options().Count)
	assert.Equal(t, 0, *cmd.options().Count)

	cmd = parse("--count", "3", "--dry-run")
	opts := cmd.options()
	require.NotNil(t, opts.Count)
	assert.Equal(t, 3, *opts.Count)
	assert.True(t, opts.DryRun)
}

func TestCleanSlugs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, cleanSlugs([]string{" a ", "", "b", "  "}))
}

func TestStageJobs_FollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule.Retry = ""
	jobs := stageJobs(&runEnv{cfg: cfg}, &liveConfig{cfg: cfg})
	require.Len(t, jobs, 3)
	assert.Equal(t, "publish", jobs[0].Name)
	assert.Equal(t, cfg.Schedule.Publish, jobs[0].Cron)
	assert.Equal(t, cfg.Schedule.Verify, jobs[1].Cron)
	assert.Empty(t, jobs[2].Cron)
}
