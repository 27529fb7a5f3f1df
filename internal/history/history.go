package history

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNoHistory is returned by LastModified for a file with no commits.
var ErrNoHistory = errors.New("no history for path")

// Filter selects the commits and files CountRecentEvents considers.
type Filter struct {
	// Markers are substrings; a commit matches when its message contains any.
	// No markers matches every commit.
	Markers []string
	// PathGlob is a path.Match pattern relative to the source root, e.g. "articles/*.md".
	// Empty matches every file.
	PathGlob string
}

// MatchMessage reports whether a commit message carries one of the markers.
func (f Filter) MatchMessage(msg string) bool {
	if len(f.Markers) == 0 {
		return true
	}
	for _, m := range f.Markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// MatchPath reports whether a slash-separated path matches PathGlob.
func (f Filter) MatchPath(p string) bool {
	if f.PathGlob == "" {
		return true
	}
	ok, err := path.Match(f.PathGlob, p)
	return err == nil && ok
}

// Source is a read-only view of the content repository history.
type Source interface {
	// CountRecentEvents counts distinct files matching filter touched by
	// matching commits within window before now.
	CountRecentEvents(ctx context.Context, window time.Duration, filter Filter) (int, error)
	// LastModified returns the time of the newest commit touching p
	// (slash-separated, relative to the source root).
	LastModified(ctx context.Context, p string) (time.Time, error)
}

// Unavailable is a Source whose every query fails with Err. Callers use it
// when the repository cannot be opened so each stage applies its own
// fallback.
type Unavailable struct{ Err error }

// CountRecentEvents implements Source.
func (u Unavailable) CountRecentEvents(context.Context, time.Duration, Filter) (int, error) {
	return 0, u.Err
}

// LastModified implements Source.
func (u Unavailable) LastModified(context.Context, string) (time.Time, error) {
	return time.Time{}, u.Err
}
