package state

import (
	"fmt"
	"time"
)

// RetryEntry is an article found unpublished and waiting for a new slot.
type RetryEntry struct {
	Slug       string
	Title      string
	File       string
	DetectedAt time.Time
}

type retryEntryJSON struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	File       string `json:"file"`
	DetectedAt string `json:"detected_at"`
	// FilePath is the key older queue files used for File.
	FilePath string `json:"file_path,omitempty"`
}

// RetryQueue is the ordered, slug-unique list of pending retries.
type RetryQueue struct {
	path    string
	loc     *time.Location
	entries []RetryEntry
}

// LoadRetryQueue reads the queue at path; a missing file is an empty queue.
func LoadRetryQueue(path string, loc *time.Location) (*RetryQueue, error) {
	q := &RetryQueue{path: path, loc: loc}
	var raw []retryEntryJSON
	if _, err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	for _, r := range raw {
		if r.Slug == "" {
			continue
		}
		e := RetryEntry{Slug: r.Slug, Title: r.Title, File: r.File}
		if e.File == "" {
			e.File = r.FilePath
		}
		if r.DetectedAt != "" {
			t, err := ParseTimestamp(r.DetectedAt, loc)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: entry %s: %w", ErrCorrupt, path, r.Slug, err)
			}
			e.DetectedAt = t
		}
		if !q.Contains(e.Slug) {
			q.entries = append(q.entries, e)
		}
	}
	return q, nil
}

// Path returns the backing file.
func (q *RetryQueue) Path() string { return q.path }

// Len returns the number of entries.
func (q *RetryQueue) Len() int { return len(q.entries) }

// Entries returns a copy of the entries in queue order.
func (q *RetryQueue) Entries() []RetryEntry {
	return append([]RetryEntry(nil), q.entries...)
}

// Contains reports whether slug is queued.
func (q *RetryQueue) Contains(slug string) bool {
	for _, e := range q.entries {
		if e.Slug == slug {
			return true
		}
	}
	return false
}

// Add appends e unless its slug is already queued.
func (q *RetryQueue) Add(e RetryEntry) bool {
	if q.Contains(e.Slug) {
		return false
	}
	q.entries = append(q.entries, e)
	return true
}

// Pop removes and returns up to n entries from the front.
func (q *RetryQueue) Pop(n int) []RetryEntry {
	if n <= 0 {
		return nil
	}
	n = min(n, len(q.entries))
	out := append([]RetryEntry(nil), q.entries[:n]...)
	q.entries = q.entries[n:]
	return out
}

// PushFront returns entries to the head of the queue in their given order,
// skipping slugs that are queued already.
func (q *RetryQueue) PushFront(entries ...RetryEntry) {
	var front []RetryEntry
	for _, e := range entries {
		if !q.Contains(e.Slug) {
			front = append(front, e)
		}
	}
	q.entries = append(front, q.entries...)
}

// PruneOlderThan drops entries detected more than age before now and returns them.
// Entries without a detection time are kept.
func (q *RetryQueue) PruneOlderThan(age time.Duration, now time.Time) []RetryEntry {
	cutoff := now.Add(-age)
	var kept, dropped []RetryEntry
	for _, e := range q.entries {
		if !e.DetectedAt.IsZero() && e.DetectedAt.Before(cutoff) {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	return dropped
}

// Save rewrites the queue file as a JSON array.
func (q *RetryQueue) Save() error {
	raw := make([]retryEntryJSON, 0, len(q.entries))
	for _, e := range q.entries {
		r := retryEntryJSON{Slug: e.Slug, Title: e.Title, File: e.File}
		if !e.DetectedAt.IsZero() {
			r.DetectedAt = FormatTimestamp(e.DetectedAt, q.loc)
		}
		raw = append(raw, r)
	}
	return writeJSON(q.path, raw)
}
