// Package helpers provides test fixtures for zennpub packages.
package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/correlate-dev/zennpub/internal/config"
)

// JST is the zone fixtures use.
var JST = time.FixedZone("JST", 9*3600)

// Workspace is a temporary content repository with a fixed clock.
type Workspace struct {
	t      *testing.T
	Root   string
	Config *config.Config
	now    time.Time
}

// NewWorkspace creates an empty workspace with default config and the clock at now.
func NewWorkspace(t *testing.T, now time.Time) *Workspace {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Workspace = root
	w := &Workspace{t: t, Root: root, Config: cfg, now: now}
	cfg.Clock = func() time.Time { return w.now }
	if err := os.MkdirAll(cfg.ArticlesDir(), 0o755); err != nil {
		t.Fatalf("mkdir articles: %v", err)
	}
	return w
}

// SetNow moves the clock.
func (w *Workspace) SetNow(now time.Time) { w.now = now }

// WriteFile writes content to a path relative to the root.
func (w *Workspace) WriteFile(rel, content string) string {
	w.t.Helper()
	full := filepath.Join(w.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		w.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		w.t.Fatalf("write %s: %v", rel, err)
	}
	return full
}

// WriteArticle writes articles/<slug>.md.
func (w *Workspace) WriteArticle(slug, content string) string {
	w.t.Helper()
	return w.WriteFile(ArticlePath(slug), content)
}

// ReadFile returns the content of a path relative to the root.
func (w *Workspace) ReadFile(rel string) string {
	w.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(filepath.Join(w.Root, filepath.FromSlash(rel)))
	if err != nil {
		w.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// ReadArticle returns the content of articles/<slug>.md.
func (w *Workspace) ReadArticle(slug string) string {
	w.t.Helper()
	return w.ReadFile(ArticlePath(slug))
}

// ArticlePath is the workspace-relative path of a slug.
func ArticlePath(slug string) string { return "articles/" + slug + ".md" }

// Draft renders a valid draft article header with a short body.
func Draft(title string) string {
	return "---\n" +
		"title: \"" + title + "\"\n" +
		"emoji: \"📝\"\n" +
		"type: \"tech\"\n" +
		"topics: [\"go\"]\n" +
		"published: false\n" +
		"publication_name: \"correlate_dev\"\n" +
		"---\n本文\n"
}

// Published renders a published article, scheduled at publishedAt when non-empty.
func Published(title, publishedAt string) string {
	s := "---\n" +
		"title: \"" + title + "\"\n" +
		"emoji: \"📝\"\n" +
		"type: \"tech\"\n" +
		"topics: [\"go\"]\n" +
		"published: true\n"
	if publishedAt != "" {
		s += "published_at: \"" + publishedAt + "\"\n"
	}
	return s + "publication_name: \"correlate_dev\"\n---\n本文\n"
}
