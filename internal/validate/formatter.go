package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats validation results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as the human-readable report.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	p := &printer{w: w}
	p.printf("=== Zenn Front Matter Validation (%d articles) ===\n\n", result.FilesTotal)

	if result.Total() == 0 {
		p.println("ALL PASS: front matter of every article is valid")
		return p.err
	}

	files, grouped := result.ByFile()
	for _, file := range files {
		p.printf("%s:\n", file)
		for _, is := range grouped[file] {
			p.printIssue(is)
		}
		p.println()
	}
	p.section("Schedule:", result.Schedule)
	p.section("Rate Limit:", result.RateLimit)
	p.printf("--- %d issues found ---\n", result.Total())
	return p.err
}

// FormatFix outputs the result of a --fix run.
func (f *TextFormatter) FormatFix(w io.Writer, result *FixResult) error {
	p := &printer{w: w}
	for _, fix := range result.Fixed {
		p.printf("  FIXED: %s (%s)\n", fix.File, strings.Join(fix.Changes, ", "))
	}
	switch {
	case len(result.Fixed) > 0:
		p.printf("\n%d files fixed\n", len(result.Fixed))
	case len(result.Errors) > 0:
		p.println("no files fixed")
	default:
		p.println("nothing to fix")
	}
	for _, err := range result.Errors {
		p.printf("  FAILED: %v\n", err)
	}
	if len(result.Remaining) > 0 {
		p.println("\n⚠️  issues --fix cannot resolve:")
		for _, is := range result.Remaining {
			p.printIssue(is)
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) println(args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintln(p.w, args...)
	}
}

func (p *printer) printIssue(is Issue) {
	p.printf("  [%s] %s\n", is.Tag, is.Message)
}

func (p *printer) section(title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	p.println(title)
	for _, is := range issues {
		p.printIssue(is)
	}
	p.println()
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal int         `json:"files_total"`
	ErrorCount int         `json:"error_count"`
	Issues     []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	File     string   `json:"file,omitempty"`
	Severity string   `json:"severity"`
	Rule     string   `json:"rule"`
	Tag      string   `json:"tag"`
	Message  string   `json:"message"`
	Articles []string `json:"articles,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	out := JSONOutput{FilesTotal: result.FilesTotal, ErrorCount: result.ErrorCount(), Issues: []JSONIssue{}}
	for _, is := range result.All() {
		out.Issues = append(out.Issues, JSONIssue{
			File:     is.File,
			Severity: is.Severity.String(),
			Rule:     is.Rule,
			Tag:      is.Tag,
			Message:  is.Message,
			Articles: is.Articles,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
