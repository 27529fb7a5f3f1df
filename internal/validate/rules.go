package validate

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/frontmatter"
)

func fileName(a *article.Article) string { return filepath.Base(a.Path) }

func issue(a *article.Article, rule, tag, msg string) Issue {
	return Issue{File: fileName(a), Severity: SeverityError, Rule: rule, Tag: tag, Message: msg}
}

// RequiredFieldsRule reports missing header fields.
type RequiredFieldsRule struct {
	Fields []string
}

func (r *RequiredFieldsRule) Name() string { return "required-fields" }

func (r *RequiredFieldsRule) Check(a *article.Article) []Issue {
	var missing []string
	for _, f := range r.Fields {
		if !a.Doc.Header.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return []Issue{issue(a, r.Name(), TagMissing, "missing required fields: "+strings.Join(missing, ", "))}
}

// PublishedComboRule rejects published: false together with published_at.
type PublishedComboRule struct{}

func (r *PublishedComboRule) Name() string { return "published-combo" }

func (r *PublishedComboRule) Check(a *article.Article) []Issue {
	raw, ok := a.Doc.Header.Get(article.KeyPublishedAt)
	if !a.IsDraft() || !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	return []Issue{issue(a, r.Name(), TagInvalid, "published: false with published_at is rejected by Zenn; set published: true or remove published_at")}
}

// QuotedFieldRule requires double quotes around the listed fields.
type QuotedFieldRule struct {
	Fields []string
}

func (r *QuotedFieldRule) Name() string { return "quoted-fields" }

func (r *QuotedFieldRule) Check(a *article.Article) []Issue {
	var out []Issue
	for _, f := range r.Fields {
		if msg, ok := quoteProblem(a, f); ok {
			out = append(out, issue(a, r.Name(), TagFormat, msg))
		}
	}
	return out
}

func quoteProblem(a *article.Article, key string) (string, bool) {
	v, ok := a.Doc.Header.Get(key)
	if !ok || v == "" || frontmatter.IsDoubleQuoted(v) {
		return "", false
	}
	return fmt.Sprintf(`%s must be double-quoted: %s: "%s"`, key, key, frontmatter.Unquote(v)), true
}

// EnumFieldRule requires a quoted value taken from a fixed set.
type EnumFieldRule struct {
	Field   string
	Allowed []string
}

func (r *EnumFieldRule) Name() string { return r.Field + "-value" }

func (r *EnumFieldRule) Check(a *article.Article) []Issue {
	v, ok := a.Doc.Header.Get(r.Field)
	if !ok || v == "" {
		return nil
	}
	var out []Issue
	if msg, bad := quoteProblem(a, r.Field); bad {
		out = append(out, issue(a, r.Name(), TagFormat, msg))
	}
	if val := frontmatter.Unquote(v); !slices.Contains(r.Allowed, val) {
		out = append(out, issue(a, r.Name(), TagValue,
			fmt.Sprintf(`%s must be one of %s: got "%s"`, r.Field, strings.Join(quoteAll(r.Allowed), ", "), val)))
	}
	return out
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = `"` + v + `"`
	}
	return out
}

// TopicsInlineRule requires topics as an inline array on the key line.
type TopicsInlineRule struct{}

func (r *TopicsInlineRule) Name() string { return "topics-inline" }

func (r *TopicsInlineRule) Check(a *article.Article) []Issue {
	v, ok := a.Doc.Header.Get(article.KeyTopics)
	if !ok || strings.HasPrefix(v, "[") {
		return nil
	}
	return []Issue{issue(a, r.Name(), TagFormat, `topics must be an inline array: topics: ["a", "b"]`)}
}
