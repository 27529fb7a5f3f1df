package validate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/frontmatter"
	"github.com/correlate-dev/zennpub/internal/logfields"
)

// FileFix lists the edits applied to one article.
type FileFix struct {
	File    string
	Changes []string
}

// FixResult is the outcome of a Fixer run.
type FixResult struct {
	Fixed  []FileFix
	Errors []error
	// Remaining holds cross-article issues that cannot be fixed mechanically.
	Remaining []Issue
}

// HasErrors reports write failures.
func (r *FixResult) HasErrors() bool { return len(r.Errors) > 0 }

// Fixer rewrites the header problems that have a single correct repair.
type Fixer struct {
	validator *Validator
	dryRun    bool
	logger    *slog.Logger
}

// NewFixer returns a Fixer. Remaining cross-article issues are computed with v.
func NewFixer(v *Validator, dryRun bool, logger *slog.Logger) *Fixer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fixer{validator: v, dryRun: dryRun, logger: logger}
}

// Fix repairs every article in place and reports what could not be repaired.
func (f *Fixer) Fix(articles []*article.Article) *FixResult {
	result := &FixResult{}
	for _, a := range articles {
		changes := FixArticle(a)
		if len(changes) == 0 {
			continue
		}
		name := filepath.Base(a.Path)
		if !f.dryRun {
			if err := a.Save(); err != nil {
				f.logger.Error("Failed to write fixed article", logfields.File(name), logfields.Error(err))
				result.Errors = append(result.Errors, fmt.Errorf("fix %s: %w", name, err))
				continue
			}
		}
		f.logger.Debug("Fixed article", logfields.File(name), logfields.Count(len(changes)))
		result.Fixed = append(result.Fixed, FileFix{File: name, Changes: changes})
	}

	schedule, rate := f.validator.CheckCross(articles)
	for _, is := range append(schedule, rate...) {
		is.Severity = SeverityWarning
		result.Remaining = append(result.Remaining, is)
	}
	return result
}

// FixArticle applies the header repairs to a in memory and describes each change.
func FixArticle(a *article.Article) []string {
	if !a.Doc.Had {
		return nil
	}
	h := a.Doc.Header
	var changes []string

	for _, key := range []string{article.KeyTitle, article.KeyEmoji, article.KeyType, article.KeyPublicationName} {
		v, ok := h.Get(key)
		if !ok || v == "" || frontmatter.IsDoubleQuoted(v) {
			continue
		}
		h.Set(key, quote(frontmatter.Unquote(v)))
		changes = append(changes, "quoted "+key)
	}

	if v, ok := h.Get(article.KeyTopics); ok && !strings.HasPrefix(v, "[") {
		topics := frontmatter.ParseList(h.Continuation(article.KeyTopics))
		if v != "" {
			topics = append(splitScalarList(v), topics...)
		}
		h.SetInline(article.KeyTopics, frontmatter.InlineList(topics))
		changes = append(changes, "inlined topics")
	}

	if a.IsDraft() && h.Has(article.KeyPublishedAt) {
		h.Delete(article.KeyPublishedAt)
		changes = append(changes, "removed published_at from draft")
	}
	return changes
}

// splitScalarList reads `topics: go, zenn` as two topics.
func splitScalarList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := frontmatter.Unquote(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// quote renders s as a YAML double-quoted scalar.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return frontmatter.Quote(strings.ReplaceAll(s, `"`, `\"`))
}
