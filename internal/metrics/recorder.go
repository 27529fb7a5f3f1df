package metrics

import "time"

// ProbeResult labels the outcome of one article probe.
type ProbeResult string

const (
	ProbeConfirmed    ProbeResult = "confirmed"
	ProbeNotFound     ProbeResult = "not_found"
	ProbeInconclusive ProbeResult = "inconclusive"
)

// Recorder defines observability hooks for command runs. All methods must be
// safe to call on NoopRecorder.
type Recorder interface {
	ObserveRunDuration(command string, d time.Duration)
	IncRunOutcome(command, outcome string) // outcome: success|failed|skipped
	IncProbe(result ProbeResult)
	AddPublished(n int)
	AddRolledBack(n int)
	AddRescheduled(n int)
	AddValidationIssues(severity string, n int)
	SetRetryQueueLength(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(string, time.Duration) {}
func (NoopRecorder) IncRunOutcome(string, string)             {}
func (NoopRecorder) IncProbe(ProbeResult)                     {}
func (NoopRecorder) AddPublished(int)                         {}
func (NoopRecorder) AddRolledBack(int)                        {}
func (NoopRecorder) AddRescheduled(int)                       {}
func (NoopRecorder) AddValidationIssues(string, int)          {}
func (NoopRecorder) SetRetryQueueLength(int)                  {}
