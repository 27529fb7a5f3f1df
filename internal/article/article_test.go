package article

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*3600)

const draft = `---
title: "Go の context"
emoji: "⏱"
type: "tech"
topics: ["go"]
published: false
publication_name: "correlate_dev"
---
本文
`

func writeArticle(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "articles")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return NewRepository(dir, root, jst, nil), dir
}

func TestLoad_SlugAndAccessors(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "go-context.md", draft)

	a, err := repo.Find("go-context")
	require.NoError(t, err)
	require.Equal(t, "go-context", a.Slug)
	require.Equal(t, "articles/go-context.md", a.RelPath)
	require.Equal(t, "Go の context", a.Title())
	require.True(t, a.IsDraft())
	_, ok := a.PublishedAt()
	require.False(t, ok)
}

func TestLoad_SlugFieldOverridesFilename(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "file.md", "---\nslug: \"custom\"\npublished: true\n---\n")

	a, err := repo.Load(filepath.Join(dir, "file.md"))
	require.NoError(t, err)
	require.Equal(t, "custom", a.Slug)
	v, known := a.Published()
	require.True(t, known)
	require.True(t, v)
}

func TestPublish_FlipsOnlyTheDraftFlag(t *testing.T) {
	repo, dir := newRepo(t)
	path := writeArticle(t, dir, "a.md", draft)

	a, err := repo.Find("a")
	require.NoError(t, err)
	require.NoError(t, a.Publish())
	require.NoError(t, a.Save())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.Replace(draft, "published: false", "published: true", 1), string(out))

	again, err := repo.Find("a")
	require.NoError(t, err)
	require.ErrorIs(t, again.Publish(), ErrNotDraft)
}

func TestPublish_NoHeaderNeverPanics(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "plain.md", "# no header\n")

	a, err := repo.Find("plain")
	require.NoError(t, err)
	require.ErrorIs(t, a.Publish(), ErrNoFrontMatter)
}

func TestRollback_RemovesPublishedAt(t *testing.T) {
	repo, dir := newRepo(t)
	path := writeArticle(t, dir, "a.md", "---\ntitle: \"x\"\npublished: true\npublished_at: \"2025-01-01 08:00\"\nemoji: \"🐹\"\n---\nbody\n")

	a, err := repo.Find("a")
	require.NoError(t, err)
	require.NoError(t, a.Rollback())
	require.NoError(t, a.Save())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: \"x\"\npublished: false\nemoji: \"🐹\"\n---\nbody\n", string(out))
	require.NotContains(t, string(out), "published_at")
}

func TestSchedule_InsertsAfterPublished(t *testing.T) {
	repo, dir := newRepo(t)
	path := writeArticle(t, dir, "a.md", draft)

	a, err := repo.Find("a")
	require.NoError(t, err)
	require.NoError(t, a.Schedule(time.Date(2025, 1, 2, 3, 30, 0, 0, time.UTC)))
	require.NoError(t, a.Save())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), "published: true\npublished_at: \"2025-01-02 12:30\"\npublication_name:")

	reloaded, err := repo.Find("a")
	require.NoError(t, err)
	at, ok := reloaded.PublishedAt()
	require.True(t, ok)
	require.True(t, at.Equal(time.Date(2025, 1, 2, 12, 30, 0, 0, jst)))
}

func TestSchedule_ReplacesExistingPublishedAt(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "a.md", "---\npublished: false\npublished_at: \"2025-01-01 08:00\"\n---\n")

	a, err := repo.Find("a")
	require.NoError(t, err)
	require.NoError(t, a.Schedule(time.Date(2025, 2, 1, 19, 0, 0, 0, jst)))
	require.Equal(t, "---\npublished: true\npublished_at: \"2025-02-01 19:00\"\n---\n", string(a.Doc.Bytes()))
}

func TestList_SkipsNonMarkdownAndKeepsOrder(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "b.md", draft)
	writeArticle(t, dir, "a.md", draft)
	writeArticle(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	articles, err := repo.List()
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "a", articles[0].Slug)
	require.Equal(t, "b", articles[1].Slug)
}

func TestList_MissingDir(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "none"), "", jst, nil)
	_, err := repo.List()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind_Missing(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.Find("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_RelativeToRoot(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "a.md", draft)

	a, err := repo.Open("articles/a.md")
	require.NoError(t, err)
	require.Equal(t, "a", a.Slug)

	_, err = repo.Open("articles/missing.md")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScheduledTimesAndParseTime(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "a.md", "---\npublished: true\npublished_at: \"2025-01-01 08:00\"\n---\n")
	writeArticle(t, dir, "b.md", "---\npublished: true\npublished_at: garbage\n---\n")
	writeArticle(t, dir, "c.md", draft)

	articles, err := repo.List()
	require.NoError(t, err)
	times := ScheduledTimes(articles)
	require.Len(t, times, 1)
	require.True(t, times[0].Equal(time.Date(2025, 1, 1, 8, 0, 0, 0, jst)))

	ts, ok := ParseTime("2025-01-01T08:00:00+09:00", time.UTC)
	require.True(t, ok)
	require.True(t, ts.Equal(times[0]))
}

func TestUnterminatedHeaderIsTolerated(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "broken.md", "---\ntitle: \"x\"\nbody without close\n")

	a, err := repo.Find("broken")
	require.NoError(t, err)
	require.Error(t, a.ParseErr)
	require.Empty(t, a.Fields())
}
