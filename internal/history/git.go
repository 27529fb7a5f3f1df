package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitSource reads history from a local git repository.
type GitSource struct {
	repo *git.Repository
	// prefix is the source root relative to the worktree root, slash-separated, "" or "dir/".
	prefix string
	now    func() time.Time
}

// OpenGit opens the repository containing root. Paths passed to the source are
// relative to root, which may be a subdirectory of the worktree.
func OpenGit(root string, now func() time.Time) (*GitSource, error) {
	if now == nil {
		now = time.Now
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", abs, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	top, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(top, abs)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if rel != "." {
		prefix = filepath.ToSlash(rel) + "/"
	}
	return &GitSource{repo: repo, prefix: prefix, now: now}, nil
}

// CountRecentEvents implements Source.
func (g *GitSource) CountRecentEvents(ctx context.Context, window time.Duration, filter Filter) (int, error) {
	since := g.now().Add(-window)
	iter, err := g.repo.Log(&git.LogOptions{Since: &since, Order: git.LogOrderCommitterTime})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	files := make(map[string]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !filter.MatchMessage(c.Message) {
			return nil
		}
		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("stats for %s: %w", c.Hash, err)
		}
		for _, s := range stats {
			name, ok := g.local(s.Name)
			if ok && filter.MatchPath(name) {
				files[name] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// LastModified implements Source.
func (g *GitSource) LastModified(ctx context.Context, p string) (time.Time, error) {
	name := g.prefix + strings.TrimPrefix(filepath.ToSlash(p), "./")
	iter, err := g.repo.Log(&git.LogOptions{FileName: &name, Order: git.LogOrderCommitterTime})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoHistory, p)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("git log %s: %w", p, err)
	}
	defer iter.Close()

	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	c, err := iter.Next()
	if errors.Is(err, io.EOF) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoHistory, p)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("git log %s: %w", p, err)
	}
	return c.Committer.When, nil
}

// local maps a worktree path to a source-relative one.
func (g *GitSource) local(name string) (string, bool) {
	if g.prefix == "" {
		return name, true
	}
	if !strings.HasPrefix(name, g.prefix) {
		return "", false
	}
	return strings.TrimPrefix(name, g.prefix), true
}
