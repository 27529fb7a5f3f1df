package state

import (
	"fmt"
	"sort"
	"time"
)

// Failure is the failure history of one slug.
type Failure struct {
	Count      int
	LastFailed time.Time
}

type failureJSON struct {
	Count      int    `json:"count"`
	LastFailed string `json:"last_failed"`
}

// FailureLog tracks consecutive verification failures per slug.
type FailureLog struct {
	path    string
	loc     *time.Location
	entries map[string]Failure
}

// LoadFailureLog reads the log at path; a missing file is an empty log.
func LoadFailureLog(path string, loc *time.Location) (*FailureLog, error) {
	l := NewFailureLog(path, loc)
	var raw map[string]failureJSON
	if _, err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	for slug, r := range raw {
		f := Failure{Count: r.Count}
		if r.LastFailed != "" {
			t, err := ParseTimestamp(r.LastFailed, loc)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: entry %s: %w", ErrCorrupt, path, slug, err)
			}
			f.LastFailed = t
		}
		l.entries[slug] = f
	}
	return l, nil
}

// NewFailureLog returns an empty log backed by path.
func NewFailureLog(path string, loc *time.Location) *FailureLog {
	return &FailureLog{path: path, loc: loc, entries: make(map[string]Failure)}
}

// Len returns the number of tracked slugs.
func (l *FailureLog) Len() int { return len(l.entries) }

// Get returns the entry for slug.
func (l *FailureLog) Get(slug string) (Failure, bool) {
	f, ok := l.entries[slug]
	return f, ok
}

// Record increments the count for slug and stamps now.
func (l *FailureLog) Record(slug string, now time.Time) Failure {
	f := l.entries[slug]
	f.Count++
	f.LastFailed = now
	l.entries[slug] = f
	return f
}

// Clear forgets slug and reports whether it was tracked.
func (l *FailureLog) Clear(slug string) bool {
	_, ok := l.entries[slug]
	delete(l.entries, slug)
	return ok
}

// InCooldown reports whether slug failed less than window before now.
func (l *FailureLog) InCooldown(slug string, window time.Duration, now time.Time) bool {
	f, ok := l.entries[slug]
	if !ok || f.LastFailed.IsZero() {
		return false
	}
	return now.Sub(f.LastFailed) < window
}

// EvictAtLeast removes every slug with count >= threshold and returns them sorted.
func (l *FailureLog) EvictAtLeast(threshold int) []string {
	var evicted []string
	for slug, f := range l.entries {
		if f.Count >= threshold {
			evicted = append(evicted, slug)
		}
	}
	sort.Strings(evicted)
	for _, slug := range evicted {
		delete(l.entries, slug)
	}
	return evicted
}

// Save rewrites the log file as a JSON object keyed by slug.
func (l *FailureLog) Save() error {
	raw := make(map[string]failureJSON, len(l.entries))
	for slug, f := range l.entries {
		r := failureJSON{Count: f.Count}
		if !f.LastFailed.IsZero() {
			r.LastFailed = FormatTimestamp(f.LastFailed, l.loc)
		}
		raw[slug] = r
	}
	return writeJSON(l.path, raw)
}
