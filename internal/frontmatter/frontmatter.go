// Package frontmatter splits Zenn Markdown files into a header block and a
// body, and edits header lines without re-serializing YAML.
package frontmatter

import (
	"bytes"
	"errors"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document opened a header block
// but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Style is the newline shape of a document; rewrites keep it.
type Style struct {
	Newline string
	// HasTrailingNewline is false when the document ends without a newline,
	// e.g. right after the closing delimiter.
	HasTrailingNewline bool
}

func (s Style) newline() string {
	if s.Newline == "" {
		return "\n"
	}
	return s.Newline
}

// Parts is a document cut at its header delimiters.
type Parts struct {
	// Header is the text between the delimiters, each line newline-terminated.
	Header []byte
	Body   []byte
	// Had is false when the document does not open with a delimiter line.
	Had   bool
	Style Style
}

// Split cuts content at the delimiter lines. A document that does not open
// with a delimiter line is all body. An unclosed header block is reported
// as ErrMissingClosingDelimiter with Body holding the full content.
func Split(content []byte) (Parts, error) {
	p := Parts{Body: content, Style: detectStyle(content)}
	nl := []byte(p.Style.newline())

	first, off, ok := nextLine(content, 0, nl)
	if !ok || string(first) != delimiter {
		return p, nil
	}
	start := off
	for off < len(content) {
		line, next, terminated := nextLine(content, off, nl)
		if string(line) == delimiter {
			p.Had = true
			p.Header = content[start:off]
			p.Body = content[next:]
			if !terminated {
				p.Body = content[len(content):]
			}
			return p, nil
		}
		off = next
	}
	return p, ErrMissingClosingDelimiter
}

// nextLine returns the line starting at off, the offset after its newline and
// whether a newline terminated it.
func nextLine(content []byte, off int, nl []byte) ([]byte, int, bool) {
	i := bytes.Index(content[off:], nl)
	if i < 0 {
		return content[off:], len(content), false
	}
	return content[off : off+i], off + i + len(nl), true
}

// Join reassembles parts. Without a header block the body is returned as is.
// A closing delimiter at end of input stays unterminated when the body is empty.
func Join(p Parts) []byte {
	if !p.Had {
		return p.Body
	}
	nl := p.Style.newline()
	var b bytes.Buffer
	b.Grow(2*(len(delimiter)+len(nl)) + len(p.Header) + len(p.Body))
	b.WriteString(delimiter + nl)
	b.Write(p.Header)
	b.WriteString(delimiter)
	if len(p.Body) > 0 || p.Style.HasTrailingNewline {
		b.WriteString(nl)
	}
	b.Write(p.Body)
	return b.Bytes()
}

func detectStyle(content []byte) Style {
	s := Style{Newline: "\n", HasTrailingNewline: bytes.HasSuffix(content, []byte("\n"))}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		s.Newline = "\r\n"
	}
	return s
}
