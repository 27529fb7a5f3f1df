// Package quota computes how many articles may still be published in the
// rolling daily window.
package quota

import (
	"fmt"
	"time"
)

// DefaultDailyLimit is the number of automatic publishes allowed per 24 hours.
const DefaultDailyLimit = 4

// LimitError indicates the daily publish quota is exhausted.
type LimitError struct {
	Limit   string
	Current int
	Maximum int
	Window  time.Duration
}

// Error implements the error interface
func (e *LimitError) Error() string {
	return fmt.Sprintf("quota limit exceeded: %s (%d/%d in %s)", e.Limit, e.Current, e.Maximum, e.Window)
}

// Daily is a rolling-window publish ceiling.
type Daily struct {
	Limit  int
	Window time.Duration
}

// NewDaily returns a Daily quota; non-positive values fall back to defaults.
func NewDaily(limit int, window time.Duration) Daily {
	d := Daily{Limit: DefaultDailyLimit, Window: 24 * time.Hour}
	if limit > 0 {
		d.Limit = limit
	}
	if window > 0 {
		d.Window = window
	}
	return d
}

// Remaining returns Limit minus used, floored at zero.
func (d Daily) Remaining(used int) int {
	if used >= d.Limit {
		return 0
	}
	if used < 0 {
		return d.Limit
	}
	return d.Limit - used
}

// Effective returns min(requested, Remaining(used)), never negative.
func (d Daily) Effective(requested, used int) int {
	if requested <= 0 {
		return 0
	}
	return min(requested, d.Remaining(used))
}

// Check returns a *LimitError when nothing can be published.
func (d Daily) Check(used int) error {
	if d.Remaining(used) > 0 {
		return nil
	}
	return &LimitError{Limit: "publishes per day", Current: used, Maximum: d.Limit, Window: d.Window}
}
