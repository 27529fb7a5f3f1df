package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fake is an in-memory Source.
type Fake struct {
	mu sync.Mutex

	// Count is returned by CountRecentEvents unless CountErr is set.
	Count    int
	CountErr error
	// Modified maps paths to their last commit time; missing paths yield ErrNoHistory.
	Modified    map[string]time.Time
	ModifiedErr error

	CountCalls int
}

// CountRecentEvents implements Source.
func (f *Fake) CountRecentEvents(ctx context.Context, _ time.Duration, _ Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountCalls++
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return f.Count, ctx.Err()
}

// LastModified implements Source.
func (f *Fake) LastModified(_ context.Context, p string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ModifiedErr != nil {
		return time.Time{}, f.ModifiedErr
	}
	t, ok := f.Modified[p]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoHistory, p)
	}
	return t, nil
}

// Touch records p as modified at t.
func (f *Fake) Touch(p string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Modified == nil {
		f.Modified = make(map[string]time.Time)
	}
	f.Modified[p] = t
}
