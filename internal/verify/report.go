package verify

import (
	"fmt"
	"io"
	"time"
)

// Result is the outcome for one article.
type Result struct {
	Slug       string
	File       string
	URL        string
	State      State
	Failures   int
	Cleared    bool
	RolledBack bool
	Queued     bool
	Err        error
}

// Report summarizes a verification run.
type Report struct {
	Fix       bool
	StartedAt time.Time
	Results   []Result

	Checked    int
	Confirmed  int
	NotFound   int
	Network    int
	Skipped    int
	RolledBack int

	Evicted     []string
	Pruned      []string
	QueueLength int
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.State {
	case StateConfirmed:
		r.Checked++
		r.Confirmed++
	case StateNotFound:
		r.Checked++
		r.NotFound++
	case StateNetworkError:
		r.Checked++
		r.Network++
	case StateScheduledFuture, StateGracePeriod:
		r.Skipped++
	}
	if res.RolledBack {
		r.RolledBack++
	}
}

// Failed returns the results that ended not-found.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == StateNotFound {
			out = append(out, res)
		}
	}
	return out
}

// Print writes human-readable status lines.
func (r *Report) Print(w io.Writer) {
	mode := "OFF"
	if r.Fix {
		mode = "ON"
	}
	fmt.Fprintf(w, "verifying published articles (fix mode: %s)\n", mode)
	for _, res := range r.Results {
		switch res.State {
		case StateConfirmed:
			fmt.Fprintf(w, "Checking: %s... ✅ OK\n", res.Slug)
		case StateNotFound:
			fmt.Fprintf(w, "Checking: %s... ❌ NOT PUBLISHED (failures: %d)\n", res.Slug, res.Failures)
			if res.RolledBack {
				fmt.Fprintln(w, "  → rolled back to published: false")
			}
			if res.Err != nil && !res.RolledBack && r.Fix {
				fmt.Fprintf(w, "  → rollback failed: %v\n", res.Err)
			}
		case StateNetworkError:
			fmt.Fprintf(w, "Checking: %s... ⚠️  inconclusive: %v\n", res.Slug, res.Err)
		case StateScheduledFuture:
			fmt.Fprintf(w, "Skipping: %s (scheduled for later)\n", res.Slug)
		case StateGracePeriod:
			fmt.Fprintf(w, "Skipping: %s (edited recently)\n", res.Slug)
		}
	}
	for _, slug := range r.Evicted {
		fmt.Fprintf(w, "⚠️  %s needs manual handling: removed from automatic retries\n", slug)
	}
	if len(r.Pruned) > 0 {
		fmt.Fprintf(w, "dropped %d retry entries older than the age limit\n", len(r.Pruned))
	}
	if r.NotFound > 0 {
		fmt.Fprintf(w, "\n🚨 %d articles not live\n", r.NotFound)
		fmt.Fprintf(w, "retry queue: %d\n", r.QueueLength)
	} else {
		fmt.Fprintln(w, "\n✅ all checked articles are live")
	}
}
