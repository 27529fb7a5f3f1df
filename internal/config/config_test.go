package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
	"github.com/correlate-dev/zennpub/internal/retry"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvWorkspace, EnvWebhook, EnvWebhookFallback, EnvNATSURL, EnvPushgatewayURL} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 4, cfg.Publish.DailyLimit)
	require.Equal(t, 48*time.Hour, cfg.Publish.Cooldown)
	require.Equal(t, 5, cfg.Frontmatter.MaxPerDay)
	require.Equal(t, []string{"08:00", "12:30", "19:00"}, cfg.Dispatch.Slots)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolateEnv(t)
	ws := t.TempDir()

	cfg, err := Load(LoadOptions{Workspace: ws})
	require.NoError(t, err)
	require.Equal(t, ws, cfg.Workspace)
	require.Equal(t, filepath.Join(ws, "articles"), cfg.ArticlesDir())
	require.Empty(t, cfg.Notify.WebhookURL)
}

func TestLoad_FileOverridesDefaultsWithEnvExpansion(t *testing.T) {
	isolateEnv(t)
	ws := t.TempDir()
	t.Setenv("ZENN_USER", "someone")
	require.NoError(t, os.WriteFile(filepath.Join(ws, DefaultFileName), []byte(`
zenn:
  username: ${ZENN_USER}
publish:
  daily_limit: 6
  cooldown: 24h
dispatch:
  slots: ["09:00", "21:00"]
`), 0o600))

	cfg, err := Load(LoadOptions{Workspace: ws})
	require.NoError(t, err)
	require.Equal(t, "someone", cfg.Zenn.Username)
	require.Equal(t, 6, cfg.Publish.DailyLimit)
	require.Equal(t, 24*time.Hour, cfg.Publish.Cooldown)
	require.Equal(t, 2, cfg.Publish.Count)
	require.Equal(t, "https://zenn.dev", cfg.Zenn.BaseURL)

	slots, err := cfg.Dispatch.SlotTimes()
	require.NoError(t, err)
	require.Equal(t, []TimeOfDay{{9, 0}, {21, 0}}, slots)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	ws := t.TempDir()
	t.Setenv(EnvWorkspace, ws)
	t.Setenv(EnvWebhookFallback, "https://discord.example/hook")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, ws, cfg.Workspace)
	require.Equal(t, "https://discord.example/hook", cfg.Notify.WebhookURL)

	t.Setenv(EnvWebhook, "https://discord.example/primary")
	cfg, err = Load(LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, "https://discord.example/primary", cfg.Notify.WebhookURL)
}

func TestLoad_DotEnvFillsUnsetVariables(t *testing.T) {
	isolateEnv(t)
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"),
		[]byte("DISCORD_WEBHOOK_CONTENT=https://discord.example/from-dotenv\n"), 0o600))

	cfg, err := Load(LoadOptions{Workspace: ws})
	require.NoError(t, err)
	require.Equal(t, "https://discord.example/from-dotenv", cfg.Notify.WebhookURL)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	isolateEnv(t)
	ws := t.TempDir()
	t.Setenv(EnvWebhookFallback, "https://discord.example/from-process")
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"),
		[]byte("DISCORD_WEBHOOK_CONTENT=https://discord.example/from-dotenv\n"), 0o600))

	cfg, err := Load(LoadOptions{Workspace: ws})
	require.NoError(t, err)
	require.Equal(t, "https://discord.example/from-process", cfg.Notify.WebhookURL)
}

func TestLoad_WorkspaceFlagWins(t *testing.T) {
	isolateEnv(t)
	flagWS := t.TempDir()
	t.Setenv(EnvWorkspace, t.TempDir())

	cfg, err := Load(LoadOptions{Workspace: flagWS})
	require.NoError(t, err)
	require.Equal(t, flagWS, cfg.Workspace)
}

func TestLoad_ExplicitMissingFileIsConfigError(t *testing.T) {
	isolateEnv(t)

	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publsh:\n  count: 1\n"), 0o600))

	_, err := Load(LoadOptions{Path: path})
	require.Error(t, err)
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad slot", func(c *Config) { c.Dispatch.Slots = []string{"25:99"} }},
		{"zero daily limit", func(c *Config) { c.Publish.DailyLimit = 0 }},
		{"bad webhook url", func(c *Config) { c.Notify.WebhookURL = "not a url" }},
		{"bad retry mode", func(c *Config) { c.Notify.Retry.Mode = "random" }},
		{"missing articles path", func(c *Config) { c.Paths.Articles = "" }},
		{"negative max", func(c *Config) { c.Dispatch.Max = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestNowUsesClockInConfiguredZone(t *testing.T) {
	cfg := Default()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Clock = func() time.Time { return fixed }

	now := cfg.Now()
	require.True(t, now.Equal(fixed))
	require.Equal(t, 9, now.Hour())
	_, offset := now.Zone()
	require.Equal(t, 9*3600, offset)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Workspace = "/ws"
	require.Equal(t, "/ws/scripts/publish-queue.txt", cfg.Resolve(cfg.Paths.PublishQueue))
	require.Equal(t, "/abs/q.txt", cfg.Resolve("/abs/q.txt"))
}

func TestRetryPolicy(t *testing.T) {
	p := Default().RetryPolicy()
	require.Equal(t, retry.ModeExponential, p.Mode)
	require.Equal(t, 2, p.MaxRetries)
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("12:30")
	require.NoError(t, err)
	require.Equal(t, "12:30", tod.String())

	day := time.Date(2025, 3, 4, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 3, 4, 12, 30, 0, 0, time.UTC), tod.On(day))

	_, err = ParseTimeOfDay("noon")
	require.Error(t, err)
}
