package config

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/correlate-dev/zennpub/internal/retry"
)

// Validate checks the whole configuration and returns ozzo validation.Errors
// keyed by section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workspace, validation.Required),
		validation.Field(&c.Timezone),
		validation.Field(&c.Paths),
		validation.Field(&c.Zenn),
		validation.Field(&c.Frontmatter),
		validation.Field(&c.Publish),
		validation.Field(&c.Verify),
		validation.Field(&c.Dispatch),
		validation.Field(&c.Notify),
		validation.Field(&c.Events),
		validation.Field(&c.Metrics),
	)
}

// Validate implements validation.Validatable.
func (t TimezoneConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.OffsetHours, validation.Min(-12), validation.Max(14)),
	)
}

// Validate implements validation.Validatable.
func (p PathsConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Articles, validation.Required),
		validation.Field(&p.PublishQueue, validation.Required),
		validation.Field(&p.FailureLog, validation.Required),
		validation.Field(&p.RetryQueue, validation.Required),
		validation.Field(&p.LockFile, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (z ZennConfig) Validate() error {
	return validation.ValidateStruct(&z,
		validation.Field(&z.BaseURL, validation.Required, is.URL),
		validation.Field(&z.Username, validation.Required),
		validation.Field(&z.ProbeTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// Validate implements validation.Validatable.
func (v FrontmatterConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.RequiredFields, validation.Required),
		validation.Field(&v.ValidTypes, validation.Required),
		validation.Field(&v.Publication, validation.Required),
		validation.Field(&v.MaxPerDay, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable.
func (p PublishConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Count, validation.Min(0)),
		validation.Field(&p.DailyLimit, validation.Required, validation.Min(1)),
		validation.Field(&p.Window, validation.Required, validation.Min(time.Minute)),
		validation.Field(&p.Cooldown, validation.Min(time.Duration(0))),
		validation.Field(&p.CommitMarkers, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (v VerifyConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.GracePeriod, validation.Min(time.Duration(0))),
		validation.Field(&v.FailureThreshold, validation.Required, validation.Min(1)),
		validation.Field(&v.RetryMaxAge, validation.Required, validation.Min(time.Hour)),
	)
}

// Validate implements validation.Validatable.
func (d DispatchConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Max, validation.Required, validation.Min(1)),
		validation.Field(&d.HorizonDays, validation.Required, validation.Min(1)),
		validation.Field(&d.Slots, validation.Required, validation.Each(validation.By(timeOfDayRule))),
	)
}

// Validate implements validation.Validatable.
func (n NotifyConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.WebhookURL, is.URL),
		validation.Field(&n.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&n.Retry),
	)
}

// Validate implements validation.Validatable.
func (r RetryConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.By(func(value any) error {
			s, _ := value.(string)
			if s != "" && retry.ParseMode(s) == "" {
				return fmt.Errorf("must be one of fixed, linear, exponential")
			}
			return nil
		})),
		validation.Field(&r.MaxRetries, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (e EventsConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Subject, validation.When(e.NATSURL != "", validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.PushgatewayURL, is.URL),
		validation.Field(&m.Job, validation.When(m.PushgatewayURL != "", validation.Required)),
	)
}

func timeOfDayRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	_, err := ParseTimeOfDay(s)
	return err
}
