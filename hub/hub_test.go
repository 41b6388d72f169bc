package hub

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/org/model/resolve/main/tokenizer.json" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"model":{"type":"WordPiece"}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloadFileCaches(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	cache := t.TempDir()
	repo := New("org/model").WithEndpoint(server.URL + "/").WithCacheDir(cache).WithAuthToken("")

	path, err := repo.DownloadFile("tokenizer.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "org--model", "main", "tokenizer.json"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "WordPiece")

	// Second call is served from the cache.
	_, err = repo.DownloadFile("tokenizer.json")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownloadFileMissing(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	repo := New("org/model").WithEndpoint(server.URL).WithCacheDir(t.TempDir())

	_, err := repo.DownloadFile("tokenizer.model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "org/model")
	assert.NoFileExists(t, repo.LocalPath("tokenizer.model"))
	assert.NoFileExists(t, repo.LocalPath("tokenizer.model")+".downloading")
}

func TestDownloadFileInvalidName(t *testing.T) {
	repo := New("org/model").WithCacheDir(t.TempDir())
	for _, name := range []string{"", "../secret", "/etc/passwd"} {
		_, err := repo.DownloadFile(name)
		assert.Error(t, err, "name %q", name)
	}
	_, err := New("").DownloadFile("tokenizer.json")
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	repo := New("org/model").WithRevision("v1.0")
	assert.Equal(t, "https://huggingface.co/org/model/resolve/v1.0/tokenizer.json", repo.FileURL("tokenizer.json"))
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("HF_HOME", "/tmp/hf")
	assert.Equal(t, filepath.Join("/tmp/hf", "hub"), DefaultCacheDir())
}
