// Package article models Zenn articles on disk and the header edits the
// publishing stages perform on them.
package article

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/correlate-dev/zennpub/internal/frontmatter"
)

// TimeLayout is the published_at format.
const TimeLayout = "2006-01-02 15:04"

// Header keys.
const (
	KeyTitle           = "title"
	KeyEmoji           = "emoji"
	KeyType            = "type"
	KeyTopics          = "topics"
	KeyPublished       = "published"
	KeyPublishedAt     = "published_at"
	KeyPublicationName = "publication_name"
	KeySlug            = "slug"
)

var (
	// ErrNotDraft is returned by Publish when no `published: false` line exists.
	ErrNotDraft = errors.New("article is not a draft")
	// ErrNoFrontMatter is returned by edits on a file without a header block.
	ErrNoFrontMatter = errors.New("article has no front matter")
)

// accepted published_at layouts, most specific first
var publishedAtLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Article is one Markdown file in the articles directory.
type Article struct {
	Slug    string
	Path    string
	RelPath string
	Doc     *frontmatter.Document

	// ParseErr is set when the header block was unterminated.
	ParseErr error

	loc *time.Location
}

func newArticle(path, relPath string, doc *frontmatter.Document, parseErr error, loc *time.Location) *Article {
	a := &Article{Path: path, RelPath: relPath, Doc: doc, ParseErr: parseErr, loc: loc}
	a.Slug = slugFromPath(path)
	if v := a.field(KeySlug); v != "" {
		a.Slug = v
	}
	return a
}

func slugFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}

func (a *Article) field(key string) string {
	v, _ := a.Doc.Header.Get(key)
	return frontmatter.Unquote(v)
}

// Fields returns the raw header values keyed by field name.
func (a *Article) Fields() map[string]string { return a.Doc.Header.Fields() }

// Title returns the unquoted title.
func (a *Article) Title() string { return a.field(KeyTitle) }

// Published reports the published flag; known is false when the flag is
// missing or not a boolean literal.
func (a *Article) Published() (value bool, known bool) {
	switch strings.ToLower(a.field(KeyPublished)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// IsDraft reports whether the article carries `published: false`.
func (a *Article) IsDraft() bool {
	v, known := a.Published()
	return known && !v
}

// RawPublishedAt returns the unquoted published_at value.
func (a *Article) RawPublishedAt() (string, bool) {
	v, ok := a.Doc.Header.Get(KeyPublishedAt)
	if !ok {
		return "", false
	}
	return frontmatter.Unquote(v), true
}

// PublishedAt parses published_at in the article's zone.
func (a *Article) PublishedAt() (time.Time, bool) {
	raw, ok := a.RawPublishedAt()
	if !ok || raw == "" {
		return time.Time{}, false
	}
	return ParseTime(raw, a.loc)
}

// ParseTime parses a published_at value. Values without an offset are read in loc.
func ParseTime(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime renders t as a published_at value in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimeLayout)
}

// Publish flips exactly one `published: false` to true.
func (a *Article) Publish() error {
	if !a.Doc.Had {
		return ErrNoFrontMatter
	}
	if !a.IsDraft() {
		return ErrNotDraft
	}
	a.Doc.Header.Set(KeyPublished, "true")
	return nil
}

// Rollback turns the article back into a draft and removes published_at.
func (a *Article) Rollback() error {
	if !a.Doc.Had {
		return ErrNoFrontMatter
	}
	a.Doc.Header.Upsert(KeyTopics, KeyPublished, "false")
	a.Doc.Header.Delete(KeyPublishedAt)
	return nil
}

// Schedule marks the article published at slot. published_at goes directly
// below the published flag.
func (a *Article) Schedule(slot time.Time) error {
	if !a.Doc.Had {
		return ErrNoFrontMatter
	}
	a.Doc.Header.Upsert(KeyTopics, KeyPublished, "true")
	a.Doc.Header.Upsert(KeyPublished, KeyPublishedAt, frontmatter.Quote(FormatTime(slot, a.loc)))
	return nil
}

// Save writes the article back to disk.
func (a *Article) Save() error {
	return a.Doc.WriteFile(a.Path)
}
