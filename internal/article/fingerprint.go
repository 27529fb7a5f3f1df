package article

import (
	"strings"

	"github.com/inful/mdfp"

	"github.com/correlate-dev/zennpub/internal/frontmatter"
)

// keys that change while an article moves through publishing
var volatileKeys = []string{KeyPublished, KeyPublishedAt}

// Fingerprint returns the content hash of the article. Header fields the
// publishing stages rewrite are excluded, so publish, rollback and
// rescheduling leave it unchanged.
func (a *Article) Fingerprint() string {
	header := frontmatter.ParseHeader(a.Doc.Header.Bytes(), a.Doc.Style)
	for _, k := range volatileKeys {
		header.Delete(k)
	}
	nl := a.Doc.Style.Newline
	if nl == "" {
		nl = "\n"
	}
	fm := strings.TrimSuffix(string(header.Bytes()), nl)
	return mdfp.CalculateFingerprintFromParts(fm, string(a.Doc.Body))
}
