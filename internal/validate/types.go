// Package validate checks article front matter and repairs what can be
// repaired mechanically.
package validate

import (
	"sort"

	"github.com/correlate-dev/zennpub/internal/article"
)

// Severity indicates the importance level of an issue.
type Severity int

const (
	// SeverityWarning is reported but never fails a run.
	SeverityWarning Severity = iota
	// SeverityError fails a --ci run.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue tags, printed in brackets in the text report.
const (
	TagMissing  = "MISSING"
	TagInvalid  = "INVALID"
	TagFormat   = "FORMAT"
	TagValue    = "VALUE"
	TagConflict = "CONFLICT"
	TagRate     = "RATE"
)

// Issue is a single front matter problem.
type Issue struct {
	File     string   // article file name; empty for cross-article issues
	Severity Severity // issue severity level
	Rule     string   // rule identifier (e.g. "topics-inline")
	Tag      string   // report tag (e.g. FORMAT)
	Message  string
	Articles []string // files involved in a cross-article issue
}

// Result contains all issues found during validation.
type Result struct {
	Issues     []Issue // per-article issues
	Schedule   []Issue // schedule conflicts
	RateLimit  []Issue // daily limit violations
	FilesTotal int
}

// All returns every issue, per-article first.
func (r *Result) All() []Issue {
	out := make([]Issue, 0, len(r.Issues)+len(r.Schedule)+len(r.RateLimit))
	out = append(out, r.Issues...)
	out = append(out, r.Schedule...)
	return append(out, r.RateLimit...)
}

// Total returns the number of issues of any severity.
func (r *Result) Total() int { return len(r.Issues) + len(r.Schedule) + len(r.RateLimit) }

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.All() {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// CountByRule tallies issues per rule name.
func (r *Result) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.All() {
		counts[issue.Rule]++
	}
	return counts
}

// ByFile groups per-article issues by file, with file names sorted.
func (r *Result) ByFile() ([]string, map[string][]Issue) {
	grouped := make(map[string][]Issue)
	for _, issue := range r.Issues {
		grouped[issue.File] = append(grouped[issue.File], issue)
	}
	files := make([]string, 0, len(grouped))
	for f := range grouped {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, grouped
}

// Rule checks one article.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string
	// Check returns the issues found in a.
	Check(a *article.Article) []Issue
}

// CrossRule checks the article set as a whole.
type CrossRule interface {
	Name() string
	Check(articles []*article.Article) []Issue
}
