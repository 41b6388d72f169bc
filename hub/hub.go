// Package hub fetches tokenizer files from a HuggingFace Hub repository into a local cache.
//
// Example:
//
//	repo := hub.New("google-bert/bert-base-cased").WithAuthToken(os.Getenv("HF_TOKEN"))
//	path, err := repo.DownloadFile("tokenizer.json")
package hub

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-pubtator/internal/downloader"
	"github.com/gomlx/go-pubtator/internal/files"
	"github.com/pkg/errors"
)

const (
	// DefaultEndpoint is the HuggingFace Hub address.
	DefaultEndpoint = "https://huggingface.co"

	// DefaultRevision is the branch used when no revision is given.
	DefaultRevision = "main"

	// DefaultDirCreationPerm is used when creating cache directories.
	DefaultDirCreationPerm = files.DefaultDirCreationPerm
)

// Repo is a HuggingFace Hub repository, identified by its ID ("owner/name").
type Repo struct {
	ID string

	// MaxParallelDownload limits simultaneous downloads from this Repo.
	MaxParallelDownload int

	revision        string
	cacheDir        string
	authToken       string
	endpoint        string
	downloadManager *downloader.Manager
}

// New creates a Repo reference. The auth token defaults to the HF_TOKEN environment variable and
// the cache directory to DefaultCacheDir.
func New(id string) *Repo {
	return &Repo{
		ID:                  id,
		MaxParallelDownload: downloader.DefaultMaxParallel,
		revision:            DefaultRevision,
		cacheDir:            DefaultCacheDir(),
		authToken:           os.Getenv("HF_TOKEN"),
		endpoint:            DefaultEndpoint,
	}
}

// DefaultCacheDir returns $HF_HOME/hub if HF_HOME is set, otherwise the user cache directory
// under "huggingface/hub".
func DefaultCacheDir() string {
	if home := os.Getenv("HF_HOME"); home != "" {
		return filepath.Join(home, "hub")
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = os.TempDir()
	}
	return filepath.Join(cache, "huggingface", "hub")
}

// WithRevision selects a branch, tag or commit.
func (r *Repo) WithRevision(revision string) *Repo {
	r.revision = revision
	return r
}

// WithCacheDir sets the directory where files are stored.
func (r *Repo) WithCacheDir(dir string) *Repo {
	r.cacheDir = dir
	return r
}

// WithAuthToken sets the token used for private repositories.
func (r *Repo) WithAuthToken(token string) *Repo {
	r.authToken = token
	r.downloadManager = nil
	return r
}

// WithEndpoint replaces DefaultEndpoint, e.g. for a mirror.
func (r *Repo) WithEndpoint(endpoint string) *Repo {
	r.endpoint = strings.TrimRight(endpoint, "/")
	return r
}

// FileURL returns the download URL of fileName.
func (r *Repo) FileURL(fileName string) string {
	return r.endpoint + "/" + r.ID + "/resolve/" + url.PathEscape(r.revision) + "/" + fileName
}

// LocalPath returns where fileName is (or will be) cached.
func (r *Repo) LocalPath(fileName string) string {
	return filepath.Join(r.cacheDir, strings.ReplaceAll(r.ID, "/", "--"), r.revision, filepath.FromSlash(fileName))
}

// DownloadFile downloads fileName if not yet cached, and returns its local path.
func (r *Repo) DownloadFile(fileName string) (string, error) {
	return r.DownloadFileContext(context.Background(), fileName)
}

// DownloadFileContext is like DownloadFile, but can be cancelled with ctx.
func (r *Repo) DownloadFileContext(ctx context.Context, fileName string) (string, error) {
	if r.ID == "" {
		return "", errors.New("repository ID is empty")
	}
	if fileName == "" || strings.Contains(fileName, "..") || strings.HasPrefix(fileName, "/") {
		return "", errors.Errorf("invalid file name %q", fileName)
	}
	filePath := r.LocalPath(fileName)
	if err := r.lockedDownload(ctx, r.FileURL(fileName), filePath, nil); err != nil {
		return "", errors.WithMessagef(err, "repository %q", r.ID)
	}
	return filePath, nil
}
