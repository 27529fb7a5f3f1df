package article

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_StableAcrossPublishState(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "a.md", draft)

	a, err := repo.Find("a")
	require.NoError(t, err)
	before := a.Fingerprint()
	require.NotEmpty(t, before)

	require.NoError(t, a.Schedule(time.Date(2025, 3, 1, 8, 0, 0, 0, jst)))
	assert.Equal(t, before, a.Fingerprint())
	require.NoError(t, a.Publish())
	assert.Equal(t, before, a.Fingerprint())
	require.NoError(t, a.Rollback())
	assert.Equal(t, before, a.Fingerprint())
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	repo, dir := newRepo(t)
	writeArticle(t, dir, "a.md", draft)
	writeArticle(t, dir, "b.md", draft+"追記\n")
	writeArticle(t, dir, "c.md", strings.Replace(draft, "Go の context", "Go の error", 1))

	fps := map[string]bool{}
	for _, slug := range []string{"a", "b", "c"} {
		a, err := repo.Find(slug)
		require.NoError(t, err)
		fps[a.Fingerprint()] = true
	}
	assert.Len(t, fps, 3)
}

