package frontmatter

import (
	"errors"
	"fmt"
	"os"
)

// Document is a Markdown file split into an editable header and an opaque body.
type Document struct {
	Header *Header
	Body   []byte
	// Had is false when the file has no (or an unterminated) header block.
	// Header edits on such a document are not serialized.
	Had   bool
	Style Style
}

// Parse splits content into a Document.
//
// A missing closing delimiter is not fatal: the returned Document is usable,
// has no fields, keeps the full content as body, and the error is
// ErrMissingClosingDelimiter.
func Parse(content []byte) (*Document, error) {
	p, err := Split(content)
	return &Document{
		Header: ParseHeader(p.Header, p.Style),
		Body:   p.Body,
		Had:    p.Had,
		Style:  p.Style,
	}, err
}

// Bytes reassembles the document.
func (d *Document) Bytes() []byte {
	return Join(Parts{Header: d.Header.Bytes(), Body: d.Body, Had: d.Had, Style: d.Style})
}

// ReadFile reads and parses path. Malformed headers are tolerated (see Parse);
// only I/O failures are returned.
func ReadFile(path string) (*Document, error) {
	//nolint:gosec // G304: article paths come from the configured articles dir
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(content)
	if err != nil && !errors.Is(err, ErrMissingClosingDelimiter) {
		return nil, err
	}
	return doc, nil
}

// WriteFile serializes the document to path, keeping the existing file mode.
func (d *Document) WriteFile(path string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, d.Bytes(), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
