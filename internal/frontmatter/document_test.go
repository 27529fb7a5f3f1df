package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_EditAndSerialize(t *testing.T) {
	doc, err := Parse([]byte("---\npublished: false\n---\n# Body\n"))
	require.NoError(t, err)
	require.True(t, doc.Had)

	doc.Header.Set("published", "true")
	require.Equal(t, "---\npublished: true\n---\n# Body\n", string(doc.Bytes()))
}

func TestParse_MissingClosingDelimiterIsUsable(t *testing.T) {
	content := []byte("---\ntitle: x\n# no close\n")

	doc, err := Parse(content)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
	require.NotNil(t, doc)
	require.False(t, doc.Had)
	require.Empty(t, doc.Header.Keys())

	doc.Header.InsertAfter("", "published", "true")
	require.Equal(t, content, doc.Bytes())
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: x\n---\nbody\n"), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	doc.Header.Set("title", `"x"`)
	require.NoError(t, doc.WriteFile(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: \"x\"\n---\nbody\n", string(out))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadFile_NoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("# just text\n"), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	require.False(t, doc.Had)
	require.Equal(t, "# just text\n", string(doc.Bytes()))
}
