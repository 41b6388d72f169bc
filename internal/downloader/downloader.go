// Package downloader implements HTTP downloads with a limit on the number of parallel transfers.
package downloader

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// DefaultMaxParallel is the number of parallel downloads used when not configured.
const DefaultMaxParallel = 4

// ProgressCallback is called as bytes are downloaded. totalBytes is -1 if the server didn't report it.
type ProgressCallback func(downloadedBytes, totalBytes int64)

// Manager downloads files over HTTP.
type Manager struct {
	client    *http.Client
	authToken string
	slots     chan struct{}
}

// New creates a Manager with default settings.
func New() *Manager {
	return &Manager{
		client: http.DefaultClient,
		slots:  make(chan struct{}, DefaultMaxParallel),
	}
}

// MaxParallel sets the maximum number of simultaneous downloads. Values <= 0 select DefaultMaxParallel.
func (m *Manager) MaxParallel(n int) *Manager {
	if n <= 0 {
		n = DefaultMaxParallel
	}
	m.slots = make(chan struct{}, n)
	return m
}

// WithAuthToken sets the bearer token sent with every request. Empty disables authentication.
func (m *Manager) WithAuthToken(token string) *Manager {
	m.authToken = token
	return m
}

// WithHTTPClient sets the client used for requests.
func (m *Manager) WithHTTPClient(client *http.Client) *Manager {
	m.client = client
	return m
}

// Download url into filePath, truncating it if it exists.
func (m *Manager) Download(ctx context.Context, url, filePath string, progressCallback ProgressCallback) error {
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-m.slots }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "creating request for %q", url)
	}
	if m.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+m.authToken)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "requesting %q", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("failed to download %q: %s", url, resp.Status)
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening %q for download", filePath)
	}
	var w io.Writer = f
	if progressCallback != nil {
		w = &progressWriter{w: f, total: resp.ContentLength, callback: progressCallback}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "downloading %q", url)
	}
	return errors.Wrapf(f.Close(), "closing %q", filePath)
}

type progressWriter struct {
	w          io.Writer
	downloaded int64
	total      int64
	callback   ProgressCallback
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.downloaded += int64(n)
	p.callback(p.downloaded, p.total)
	return n, err
}
