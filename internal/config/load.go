package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundationerrors "github.com/correlate-dev/zennpub/internal/foundation/errors"
)

// Environment variables consulted after the config file.
const (
	EnvWorkspace       = "GITHUB_WORKSPACE"
	EnvWebhook         = "DISCORD_WEBHOOK_URL_CONTENT"
	EnvWebhookFallback = "DISCORD_WEBHOOK_CONTENT"
	EnvNATSURL         = "ZENNPUB_NATS_URL"
	EnvPushgatewayURL  = "ZENNPUB_PUSHGATEWAY_URL"
)

// LoadOptions selects the config file and the workspace override.
type LoadOptions struct {
	// Path is an explicit config file. Empty means <workspace>/zennpub.yaml if present.
	Path string
	// Workspace overrides every other workspace source when set.
	Workspace string
}

// Load builds a Config from defaults, the optional YAML file, .env files and
// the environment, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	loadEnvFiles(opts.Workspace)

	cfg := Default()
	if ws := os.Getenv(EnvWorkspace); ws != "" {
		cfg.Workspace = ws
	}
	if opts.Workspace != "" {
		cfg.Workspace = opts.Workspace
	}

	path := opts.Path
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.Workspace, DefaultFileName)
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	if opts.Workspace != "" {
		cfg.Workspace = opts.Workspace
	}

	abs, err := filepath.Abs(cfg.Workspace)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "resolve workspace").
			WithContext("workspace", cfg.Workspace).Fatal().Build()
	}
	cfg.Workspace = abs

	if err := cfg.Validate(); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid configuration").Fatal().Build()
	}
	return cfg, nil
}

// mergeFile overlays the YAML file onto cfg. A missing implicit file is not an error.
func (c *Config) mergeFile(path string, explicit bool) error {
	//nolint:gosec // G304: config path is chosen by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "read configuration file").
			WithContext("path", path).Fatal().Build()
	}

	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, fmt.Sprintf("parse %s", filepath.Base(path))).
			WithContext("path", path).Fatal().Build()
	}
	return nil
}

// loadEnvFiles populates the process environment from .env files without
// overriding variables that are already set.
func loadEnvFiles(workspace string) {
	candidates := []string{".env", ".env.local"}
	if workspace != "" {
		candidates = append(candidates, filepath.Join(workspace, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvWorkspace); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv(EnvWebhook); v != "" {
		c.Notify.WebhookURL = v
	} else if v := os.Getenv(EnvWebhookFallback); v != "" {
		c.Notify.WebhookURL = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		c.Events.NATSURL = v
	}
	if v := os.Getenv(EnvPushgatewayURL); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}
