package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "zennpub"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration      *prom.HistogramVec
	runOutcome       *prom.CounterVec
	probes           *prom.CounterVec
	published        prom.Counter
	rolledBack       prom.Counter
	rescheduled      prom.Counter
	validationIssues *prom.CounterVec
	retryQueue       prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of command runs",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Command runs by final status",
		}, []string{"command", "outcome"}),
		probes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Article URL probes by result",
		}, []string{"result"}),
		published: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "articles_published_total",
			Help:      "Drafts flipped to published",
		}),
		rolledBack: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "articles_rolled_back_total",
			Help:      "Articles reverted to draft after failed verification",
		}),
		rescheduled: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "articles_rescheduled_total",
			Help:      "Retry queue entries given a new publication slot",
		}),
		validationIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Front matter issues found by severity",
		}, []string{"severity"}),
		retryQueue: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "retry_queue_length",
			Help:      "Entries waiting in the retry queue",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.runOutcome, pr.probes, pr.published,
		pr.rolledBack, pr.rescheduled, pr.validationIssues, pr.retryQueue)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(command string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(command, outcome string) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(command, outcome).Inc()
}

func (p *PrometheusRecorder) IncProbe(result ProbeResult) {
	if p == nil {
		return
	}
	p.probes.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddPublished(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.published.Add(float64(n))
}

func (p *PrometheusRecorder) AddRolledBack(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.rolledBack.Add(float64(n))
}

func (p *PrometheusRecorder) AddRescheduled(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.rescheduled.Add(float64(n))
}

func (p *PrometheusRecorder) AddValidationIssues(severity string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.validationIssues.WithLabelValues(severity).Add(float64(n))
}

func (p *PrometheusRecorder) SetRetryQueueLength(n int) {
	if p == nil {
		return
	}
	p.retryQueue.Set(float64(n))
}
