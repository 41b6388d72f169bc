// Package files implements file helpers shared by the hub cache and the record writers.
package files

import (
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// DefaultDirCreationPerm is used when creating directories for written files.
const DefaultDirCreationPerm = 0755

// Exists returns true if a file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExecOnFileLock opens the lockPath file (or creates if it doesn't yet exist), locks it, and executes the function.
// If the lockPath is already locked, it polls with a 1 to 2 seconds period (randomly), until it acquires the lock.
//
// The lockPath is not removed. It's safe to remove it from the given fn, if one knows that no new calls to
// ExecOnFileLock with the same lockPath is going to be made.
func ExecOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}

		// Wait from 1 to 2 seconds.
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}

	// Setup clean up in a deferred function, so it happens even if `fn()` panics.
	defer func() {
		unlockErr := fileLock.Unlock()
		if unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				log.Printf("Error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()

	fn()
	return
}

// CreateLocked creates filePath once with create, which receives the temporary path
// (filePath+tmpSuffix) it must write to. On success the temporary file is renamed to filePath, so
// readers never observe a partial file. On failure it is removed.
//
// A filePath+".lock" file serializes concurrent creators of the same path, including other
// processes. An existing filePath, possibly created while waiting for the lock, is left untouched
// and create is not called: this is what makes removing the lock file after success safe.
func CreateLocked(filePath, tmpSuffix string, create func(tmpPath string) error) error {
	if Exists(filePath) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := ExecOnFileLock(lockPath, func() {
		if Exists(filePath) {
			return
		}
		tmpPath := filePath + tmpSuffix
		if mainErr = create(tmpPath); mainErr != nil {
			mainErr = errors.WithMessagef(mainErr, "while creating %q", tmpPath)
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				log.Printf("Failed removing temporary file %q: %v", tmpPath, err)
			}
			return
		}
		if err := os.Rename(tmpPath, filePath); err != nil {
			mainErr = errors.Wrapf(err, "failed to move %q to %q", tmpPath, filePath)
			_ = os.Remove(tmpPath)
			return
		}

		// filePath exists now, later callers return before taking the lock.
		if err := os.Remove(lockPath); err != nil {
			log.Printf("Warning: error removing lock file %q: %+v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to create %q", lockPath, filePath)
	}
	return nil
}

// WriteAtomic writes filePath through write, replacing any previous content atomically.
//
// The content goes to a uniquely named temporary file in the same directory, renamed over filePath
// once complete. Concurrent writers never share a temporary file: the last rename wins. On failure
// filePath is left as it was and nothing else remains in its directory.
func WriteAtomic(filePath string, write func(w io.Writer) error) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.writing")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %q", filePath)
	}
	tmpPath := tmpFile.Name()
	done := false
	defer func() {
		if !done {
			_ = tmpFile.Close()
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				log.Printf("Failed removing temporary file %q: %v", tmpPath, err)
			}
		}
	}()

	if err := write(tmpFile); err != nil {
		return errors.WithMessagef(err, "while writing %q", tmpPath)
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary file %q", tmpPath)
	}
	// CreateTemp uses mode 0600, outputs get the usual permissions.
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return errors.Wrapf(err, "failed to set permissions of %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return errors.Wrapf(err, "failed to move %q to %q", tmpPath, filePath)
	}
	done = true
	return nil
}
