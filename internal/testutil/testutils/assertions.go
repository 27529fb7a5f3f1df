package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/correlate-dev/zennpub/internal/frontmatter"
)

// ArticleAssertions checks the header of one article in a workspace.
type ArticleAssertions struct {
	t    *testing.T
	path string
}

// Article returns assertions for articles/<slug>.md.
func (w *Workspace) Article(slug string) *ArticleAssertions {
	return &ArticleAssertions{t: w.t, path: filepath.Join(w.Root, filepath.FromSlash(ArticlePath(slug)))}
}

func (a *ArticleAssertions) doc() *frontmatter.Document {
	a.t.Helper()
	doc, err := frontmatter.ReadFile(a.path)
	if err != nil {
		a.t.Fatalf("read %s: %v", a.path, err)
	}
	return doc
}

// Published asserts the published flag.
func (a *ArticleAssertions) Published(want bool) *ArticleAssertions {
	a.t.Helper()
	got, ok := a.doc().Header.Get("published")
	if !ok {
		a.t.Errorf("%s: no published field", filepath.Base(a.path))
		return a
	}
	if (strings.TrimSpace(got) == "true") != want {
		a.t.Errorf("%s: published = %s, want %v", filepath.Base(a.path), got, want)
	}
	return a
}

// PublishedAt asserts the unquoted published_at value.
func (a *ArticleAssertions) PublishedAt(want string) *ArticleAssertions {
	a.t.Helper()
	got, ok := a.doc().Header.Get("published_at")
	if !ok || frontmatter.Unquote(got) != want {
		a.t.Errorf("%s: published_at = %q (present %v), want %q", filepath.Base(a.path), got, ok, want)
	}
	return a
}

// NoPublishedAt asserts that the header has no published_at line.
func (a *ArticleAssertions) NoPublishedAt() *ArticleAssertions {
	a.t.Helper()
	if got, ok := a.doc().Header.Get("published_at"); ok {
		a.t.Errorf("%s: unexpected published_at %s", filepath.Base(a.path), got)
	}
	return a
}

// Contains asserts that the raw file contains s.
func (a *ArticleAssertions) Contains(s string) *ArticleAssertions {
	a.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(a.path)
	if err != nil {
		a.t.Fatalf("read %s: %v", a.path, err)
	}
	if !strings.Contains(string(data), s) {
		a.t.Errorf("expected %s to contain %q\nActual content:\n%s", filepath.Base(a.path), s, data)
	}
	return a
}

// AssertMissing asserts that nothing exists at a path relative to the root.
func (w *Workspace) AssertMissing(rel string) {
	w.t.Helper()
	full := filepath.Join(w.Root, filepath.FromSlash(rel))
	if _, err := os.Stat(full); err == nil {
		w.t.Errorf("expected %s to be absent", rel)
	}
}
