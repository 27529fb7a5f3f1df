package config

import (
	"time"
)

// Default returns a configuration with every field populated.
func Default() *Config {
	return &Config{
		Workspace: ".",
		Timezone:  TimezoneConfig{Name: "JST", OffsetHours: 9},
		Paths: PathsConfig{
			Articles:     "articles",
			PublishQueue: "scripts/publish-queue.txt",
			FailureLog:   "scripts/.publish-failures.json",
			RetryQueue:   ".github/scripts/.zenn-retry-queue.json",
			LockFile:     ".github/scripts/.zennpub.lock",
		},
		Zenn: ZennConfig{
			BaseURL:      "https://zenn.dev",
			Username:     "correlate",
			ProbeTimeout: 10 * time.Second,
			UserAgent:    "zennpub-verify/1.0",
		},
		Frontmatter: FrontmatterConfig{
			RequiredFields: []string{"title", "emoji", "type", "topics", "published", "publication_name"},
			ValidTypes:     []string{"tech", "idea"},
			Publication:    "correlate_dev",
			MaxPerDay:      5,
		},
		Publish: PublishConfig{
			Count:         2,
			DailyLimit:    4,
			Window:        24 * time.Hour,
			Cooldown:      48 * time.Hour,
			CommitMarkers: []string{"自動公開", "予約記事を自動公開"},
		},
		Verify: VerifyConfig{
			GracePeriod:      6 * time.Hour,
			FailureThreshold: 10,
			RetryMaxAge:      30 * 24 * time.Hour,
		},
		Dispatch: DispatchConfig{
			Max:         3,
			Slots:       []string{"08:00", "12:30", "19:00"},
			HorizonDays: 14,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
			Retry:   RetryConfig{Mode: "exponential", Initial: time.Second, Max: 10 * time.Second, MaxRetries: 2},
		},
		Events: EventsConfig{
			Subject: "zennpub.articles",
		},
		Metrics: MetricsConfig{
			Job: "zennpub",
		},
		Schedule: ScheduleConfig{
			Publish: "0 7 * * *",
			Verify:  "30 */3 * * *",
			Retry:   "0 6 * * *",
		},
	}
}
