package hub

import (
	"context"

	"github.com/gomlx/go-pubtator/internal/downloader"
	"github.com/gomlx/go-pubtator/internal/files"
)

// getDownloadManager returns current downloader.Manager, or creates a new one for this Repo.
func (r *Repo) getDownloadManager() *downloader.Manager {
	if r.downloadManager == nil {
		r.downloadManager = downloader.New().MaxParallel(r.MaxParallelDownload).WithAuthToken(r.authToken)
	}
	return r.downloadManager
}

// lockedDownload url to the given filePath, unless it already exists.
//
// The file is downloaded to filePath+".downloading" and then moved to filePath, under a lock
// shared with other processes downloading the same file.
func (r *Repo) lockedDownload(ctx context.Context, url, filePath string, progressCallback downloader.ProgressCallback) error {
	// Checks whether context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}
	return files.CreateLocked(filePath, ".downloading", func(tmpPath string) error {
		return r.getDownloadManager().Download(ctx, url, tmpPath, progressCallback)
	})
}
