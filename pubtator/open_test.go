package pubtator

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeXZ(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(content)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(plain, []byte(scenarioA), 0644))
	assert.Equal(t, scenarioA, readAll(t, plain))

	compressed := filepath.Join(dir, "corpus.txt.xz")
	writeXZ(t, compressed, scenarioA)
	assert.Equal(t, scenarioA, readAll(t, compressed))

	// Detected by its magic bytes.
	unnamed := filepath.Join(dir, "corpus.bin")
	writeXZ(t, unnamed, scenarioA)
	assert.Equal(t, scenarioA, readAll(t, unnamed))

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	assert.Equal(t, "", readAll(t, empty))
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.xz")
	require.NoError(t, os.WriteFile(broken, []byte("not xz at all"), 0644))
	_, err = Open(broken)
	assert.Error(t, err)
}

func TestOpenAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt.xz")
	writeXZ(t, path, scenarioA+"2|t|Second\n")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	docs, err := NewParser(nil).Parse(r)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Second ", docs[1].FullText)
}
