// Package config holds the explicit configuration passed to every zennpub stage.
package config

import (
	"path/filepath"
	"time"

	"github.com/correlate-dev/zennpub/internal/retry"
)

// DefaultFileName is looked up in the workspace when no config path is given.
const DefaultFileName = "zennpub.yaml"

// Config is the complete runtime configuration.
type Config struct {
	// Workspace is the content repository root; relative paths resolve against it.
	Workspace   string            `yaml:"workspace"`
	Timezone    TimezoneConfig    `yaml:"timezone"`
	Paths       PathsConfig       `yaml:"paths"`
	Zenn        ZennConfig        `yaml:"zenn"`
	Frontmatter FrontmatterConfig `yaml:"frontmatter"`
	Publish     PublishConfig     `yaml:"publish"`
	Verify      VerifyConfig      `yaml:"verify"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
	Notify      NotifyConfig      `yaml:"notify"`
	Events      EventsConfig      `yaml:"events"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Schedule    ScheduleConfig    `yaml:"schedule"`

	// Clock overrides the wall clock. Tests set it; production leaves it nil.
	Clock func() time.Time `yaml:"-"`
}

// TimezoneConfig is the fixed zone used for published_at values.
type TimezoneConfig struct {
	Name        string `yaml:"name"`
	OffsetHours int    `yaml:"offset_hours"`
}

// PathsConfig lists the files zennpub reads and writes.
type PathsConfig struct {
	Articles     string `yaml:"articles"`
	PublishQueue string `yaml:"publish_queue"`
	FailureLog   string `yaml:"failure_log"`
	RetryQueue   string `yaml:"retry_queue"`
	LockFile     string `yaml:"lock_file"`
}

// ZennConfig describes the remote platform.
type ZennConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Username     string        `yaml:"username"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	UserAgent    string        `yaml:"user_agent"`
}

// FrontmatterConfig drives the front matter rules.
type FrontmatterConfig struct {
	RequiredFields []string `yaml:"required_fields"`
	ValidTypes     []string `yaml:"valid_types"`
	Publication    string   `yaml:"publication"`
	MaxPerDay      int      `yaml:"max_per_day"`
}

// PublishConfig drives the daily publisher.
type PublishConfig struct {
	Count         int           `yaml:"count"`
	DailyLimit    int           `yaml:"daily_limit"`
	Window        time.Duration `yaml:"window"`
	Cooldown      time.Duration `yaml:"cooldown"`
	CommitMarkers []string      `yaml:"commit_markers"`
}

// VerifyConfig drives the verifier.
type VerifyConfig struct {
	GracePeriod      time.Duration `yaml:"grace_period"`
	FailureThreshold int           `yaml:"failure_threshold"`
	RetryMaxAge      time.Duration `yaml:"retry_max_age"`
}

// DispatchConfig drives rescheduling of queued retries.
type DispatchConfig struct {
	Max         int      `yaml:"max"`
	Slots       []string `yaml:"slots"`
	HorizonDays int      `yaml:"horizon_days"`
}

// NotifyConfig configures the webhook notifier. An empty URL disables it.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Retry      RetryConfig   `yaml:"retry"`
}

// RetryConfig is the raw backoff policy for outbound webhooks.
type RetryConfig struct {
	Mode       string        `yaml:"mode"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// EventsConfig configures NATS event publishing. An empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus Pushgateway. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// ScheduleConfig holds cron expressions for the in-process scheduler.
type ScheduleConfig struct {
	Publish string `yaml:"publish"`
	Verify  string `yaml:"verify"`
	Retry   string `yaml:"retry"`
}

// Location returns the configured fixed zone.
func (c *Config) Location() *time.Location {
	return time.FixedZone(c.Timezone.Name, c.Timezone.OffsetHours*3600)
}

// Now returns the current time in the configured zone.
func (c *Config) Now() time.Time {
	now := time.Now
	if c.Clock != nil {
		now = c.Clock
	}
	return now().In(c.Location())
}

// Resolve makes p absolute against the workspace.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace, p)
}

// ArticlesDir is the resolved articles directory.
func (c *Config) ArticlesDir() string { return c.Resolve(c.Paths.Articles) }

// RetryPolicy builds the webhook backoff policy.
func (c *Config) RetryPolicy() retry.Policy {
	r := c.Notify.Retry
	return retry.NewPolicy(retry.Mode(r.Mode), r.Initial, r.Max, r.MaxRetries)
}
