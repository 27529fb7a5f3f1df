package article

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/correlate-dev/zennpub/internal/frontmatter"
	"github.com/correlate-dev/zennpub/internal/logfields"
)

// ErrNotFound is returned by Find for a slug without a file.
var ErrNotFound = errors.New("article not found")

// Repository reads articles from one directory.
type Repository struct {
	dir    string
	root   string
	loc    *time.Location
	logger *slog.Logger
}

// NewRepository returns a repository over dir. RelPath values are relative to root.
func NewRepository(dir, root string, loc *time.Location, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{dir: dir, root: root, loc: loc, logger: logger}
}

// Dir returns the articles directory.
func (r *Repository) Dir() string { return r.dir }

// List returns every *.md article in directory listing order.
// Unreadable files are logged and skipped.
func (r *Repository) List() ([]*Article, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list articles in %s: %w", r.dir, err)
	}

	var out []*Article
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		a, err := r.Load(filepath.Join(r.dir, e.Name()))
		if err != nil {
			r.logger.Warn("Skipping unreadable article", logfields.File(e.Name()), logfields.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Load reads a single article file.
func (r *Repository) Load(path string) (*Article, error) {
	//nolint:gosec // G304: article paths come from the configured articles dir
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, parseErr := frontmatter.Parse(content)
	if parseErr != nil && !errors.Is(parseErr, frontmatter.ErrMissingClosingDelimiter) {
		return nil, parseErr
	}
	return newArticle(path, r.rel(path), doc, parseErr, r.loc), nil
}

// Find loads articles/<slug>.md.
func (r *Repository) Find(slug string) (*Article, error) {
	path := filepath.Join(r.dir, slug+".md")
	a, err := r.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return a, err
}

// Open loads a path relative to root, as stored in the retry queue.
func (r *Repository) Open(relPath string) (*Article, error) {
	path := relPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, filepath.FromSlash(relPath))
	}
	a, err := r.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
	}
	return a, err
}

// ScheduledTimes returns the parsed published_at of every article, in listing order.
func ScheduledTimes(articles []*Article) []time.Time {
	var out []time.Time
	for _, a := range articles {
		if t, ok := a.PublishedAt(); ok {
			out = append(out, t)
		}
	}
	return out
}

// BySlug indexes articles by slug; the first article wins on duplicates.
func BySlug(articles []*Article) map[string]*Article {
	m := make(map[string]*Article, len(articles))
	for _, a := range articles {
		if _, ok := m[a.Slug]; !ok {
			m[a.Slug] = a
		}
	}
	return m
}

func (r *Repository) rel(path string) string {
	if r.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
