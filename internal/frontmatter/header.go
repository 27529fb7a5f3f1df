package frontmatter

import (
	"regexp"
	"strings"
)

var fieldPattern = regexp.MustCompile(`^([A-Za-z_][\w-]*)(\s*:[ \t]*)(.*?)\s*$`)

// line is one physical header line. Field lines carry a key; every other
// line is kept verbatim.
type line struct {
	key   string
	sep   string
	value string
	raw   string
	dirty bool
}

func (l line) isField() bool { return l.key != "" }

// isContinuation reports whether the line belongs to the field above it,
// e.g. an indented YAML list item.
func (l line) isContinuation() bool {
	if l.isField() || l.raw == "" {
		return false
	}
	return l.raw[0] == ' ' || l.raw[0] == '\t' || l.raw[0] == '-'
}

func (l line) String() string {
	if !l.dirty {
		return l.raw
	}
	sep := l.sep
	if l.value != "" && !strings.HasSuffix(sep, " ") && !strings.HasSuffix(sep, "\t") {
		sep += " "
	}
	return l.key + sep + l.value
}

// Header is an ordered, line-preserving view of a front matter block.
//
// Parsing and serializing an unedited header reproduces the input exactly.
// Edits touch only the lines they target; key order and the quoting style of
// untouched values never change.
type Header struct {
	lines []line
	nl    string
}

// ParseHeader parses the raw block returned by Split (without delimiters).
func ParseHeader(raw []byte, style Style) *Header {
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	h := &Header{nl: nl}
	text := strings.TrimSuffix(string(raw), nl)
	if text == "" {
		return h
	}
	for _, r := range strings.Split(text, nl) {
		h.lines = append(h.lines, parseLine(r))
	}
	return h
}

func parseLine(raw string) line {
	m := fieldPattern.FindStringSubmatch(raw)
	if m == nil {
		return line{raw: raw}
	}
	return line{key: m[1], sep: m[2], value: m[3], raw: raw}
}

// Bytes serializes the header without delimiters, newline-terminated.
func (h *Header) Bytes() []byte {
	if len(h.lines) == 0 {
		return []byte{}
	}
	var b strings.Builder
	for _, l := range h.lines {
		b.WriteString(l.String())
		b.WriteString(h.nl)
	}
	return []byte(b.String())
}

func (h *Header) index(key string) int {
	for i, l := range h.lines {
		if l.key == key {
			return i
		}
	}
	return -1
}

// blockEnd returns the index just past the field at i and its continuation lines.
func (h *Header) blockEnd(i int) int {
	j := i + 1
	for j < len(h.lines) && h.lines[j].isContinuation() {
		j++
	}
	return j
}

// Len returns the number of physical lines.
func (h *Header) Len() int { return len(h.lines) }

// Has reports whether the key is present.
func (h *Header) Has(key string) bool { return h.index(key) >= 0 }

// Get returns the raw (still quoted) value of the first occurrence of key.
func (h *Header) Get(key string) (string, bool) {
	i := h.index(key)
	if i < 0 {
		return "", false
	}
	return h.lines[i].value, true
}

// Keys returns field keys in header order, first occurrence only.
func (h *Header) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, l := range h.lines {
		if l.isField() && !seen[l.key] {
			seen[l.key] = true
			keys = append(keys, l.key)
		}
	}
	return keys
}

// Fields returns key to raw value for the first occurrence of every key.
func (h *Header) Fields() map[string]string {
	fields := make(map[string]string)
	for _, l := range h.lines {
		if _, ok := fields[l.key]; l.isField() && !ok {
			fields[l.key] = l.value
		}
	}
	return fields
}

// Continuation returns the raw lines attached below key.
func (h *Header) Continuation(key string) []string {
	i := h.index(key)
	if i < 0 {
		return nil
	}
	var out []string
	for _, l := range h.lines[i+1 : h.blockEnd(i)] {
		out = append(out, l.raw)
	}
	return out
}

// Set replaces the value of an existing key, keeping its separator.
// It reports false when the key is absent.
func (h *Header) Set(key, value string) bool {
	i := h.index(key)
	if i < 0 {
		return false
	}
	h.lines[i].value = value
	h.lines[i].dirty = true
	return true
}

// SetInline replaces the value of key and drops its continuation lines.
func (h *Header) SetInline(key, value string) bool {
	i := h.index(key)
	if i < 0 {
		return false
	}
	h.lines[i].value = value
	h.lines[i].dirty = true
	h.lines = append(h.lines[:i+1], h.lines[h.blockEnd(i):]...)
	return true
}

// InsertAfter adds key directly below the block of anchor. When anchor is
// missing the field is appended.
func (h *Header) InsertAfter(anchor, key, value string) {
	field := line{key: key, sep: ": ", value: value, dirty: true}
	i := h.index(anchor)
	if i < 0 {
		h.lines = append(h.lines, field)
		return
	}
	at := h.blockEnd(i)
	h.lines = append(h.lines[:at], append([]line{field}, h.lines[at:]...)...)
}

// Upsert sets key when present, otherwise inserts it after anchor.
func (h *Header) Upsert(anchor, key, value string) {
	if !h.Set(key, value) {
		h.InsertAfter(anchor, key, value)
	}
}

// Delete removes every occurrence of key together with its continuation lines.
func (h *Header) Delete(key string) bool {
	removed := false
	for i := h.index(key); i >= 0; i = h.index(key) {
		h.lines = append(h.lines[:i], h.lines[h.blockEnd(i):]...)
		removed = true
	}
	return removed
}

// Unquote strips one layer of matching double or single quotes.
func Unquote(value string) string {
	v := strings.TrimSpace(value)
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// IsDoubleQuoted reports whether value is wrapped in double quotes.
func IsDoubleQuoted(value string) bool {
	v := strings.TrimSpace(value)
	return len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`)
}

// Quote wraps value in double quotes.
func Quote(value string) string {
	return `"` + value + `"`
}
