package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	helpers "github.com/correlate-dev/zennpub/internal/testutil/testutils"
)

var base = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func addCommit(t *testing.T, repo *git.Repository, root string, when time.Time, msg string, files ...string) {
	t.Helper()
	helpers.CommitFiles(t, repo, root, when, msg, files...)
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	repo, _, root := helpers.SetupTestGitRepo(t)
	return repo, root
}

var publishFilter = Filter{Markers: []string{"自動公開", "予約記事を自動公開"}, PathGlob: "articles/*.md"}

func TestCountRecentEvents_DistinctMatchingFilesInWindow(t *testing.T) {
	repo, root := initRepo(t)
	addCommit(t, repo, root, base.Add(-30*time.Hour), "chore: 自動公開 old", "articles/old.md")
	addCommit(t, repo, root, base.Add(-5*time.Hour), "chore: 自動公開 2件", "articles/a.md", "articles/b.md")
	addCommit(t, repo, root, base.Add(-4*time.Hour), "fix typo", "articles/c.md")
	addCommit(t, repo, root, base.Add(-3*time.Hour), "予約記事を自動公開", "articles/a.md", "README.md")

	src, err := OpenGit(root, func() time.Time { return base })
	require.NoError(t, err)

	n, err := src.CountRecentEvents(context.Background(), 24*time.Hour, publishFilter)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCountRecentEvents_EmptyRepository(t *testing.T) {
	_, root := initRepo(t)
	src, err := OpenGit(root, func() time.Time { return base })
	require.NoError(t, err)

	n, err := src.CountRecentEvents(context.Background(), 24*time.Hour, publishFilter)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLastModified(t *testing.T) {
	repo, root := initRepo(t)
	addCommit(t, repo, root, base.Add(-10*time.Hour), "add", "articles/a.md", "articles/b.md")
	addCommit(t, repo, root, base.Add(-2*time.Hour), "edit a", "articles/a.md")

	src, err := OpenGit(root, nil)
	require.NoError(t, err)

	at, err := src.LastModified(context.Background(), "articles/a.md")
	require.NoError(t, err)
	require.True(t, at.Equal(base.Add(-2*time.Hour)), "got %s", at)

	bt, err := src.LastModified(context.Background(), "articles/b.md")
	require.NoError(t, err)
	require.True(t, bt.Equal(base.Add(-10*time.Hour)))

	_, err = src.LastModified(context.Background(), "articles/untracked.md")
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestOpenGit_SubdirectoryRoot(t *testing.T) {
	repo, root := initRepo(t)
	addCommit(t, repo, root, base.Add(-time.Hour), "自動公開", "site/articles/a.md", "articles/outside.md")

	src, err := OpenGit(filepath.Join(root, "site"), func() time.Time { return base })
	require.NoError(t, err)

	n, err := src.CountRecentEvents(context.Background(), 24*time.Hour, publishFilter)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = src.LastModified(context.Background(), "articles/a.md")
	require.NoError(t, err)
}

func TestOpenGit_NotARepository(t *testing.T) {
	_, err := OpenGit(t.TempDir(), nil)
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	require.True(t, publishFilter.MatchMessage("chore: 自動公開 (2)"))
	require.False(t, publishFilter.MatchMessage("rollback"))
	require.True(t, Filter{}.MatchMessage("anything"))

	require.True(t, publishFilter.MatchPath("articles/a.md"))
	require.False(t, publishFilter.MatchPath("articles/img/a.png"))
	require.False(t, publishFilter.MatchPath("books/a.md"))
}

func TestFake(t *testing.T) {
	f := &Fake{Count: 3}
	n, err := f.CountRecentEvents(context.Background(), time.Hour, Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 1, f.CountCalls)

	_, err = f.LastModified(context.Background(), "articles/a.md")
	require.ErrorIs(t, err, ErrNoHistory)

	f.Touch("articles/a.md", base)
	at, err := f.LastModified(context.Background(), "articles/a.md")
	require.NoError(t, err)
	require.Equal(t, base, at)
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("not a repository")
	var src Source = Unavailable{Err: cause}
	_, err := src.CountRecentEvents(context.Background(), time.Hour, Filter{})
	require.ErrorIs(t, err, cause)
	_, err = src.LastModified(context.Background(), "articles/a.md")
	require.ErrorIs(t, err, cause)
}
