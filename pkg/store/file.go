package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tus/lockfile"
)

var defaultFilePerm = os.FileMode(0644)

// File is a durable Store. Each fingerprint is persisted as a single
// regular file at Dir/<fingerprint>, whose entire content is the resource
// URI as UTF-8 text. Entry absence is represented by file absence.
//
// Concurrent access across OS processes is serialized with a short-lived
// lockfile per operation, the same mechanism tusd's pkg/filelocker uses to
// guard its upload directory.
type File struct {
	// Dir is the directory entries are stored in. It must already exist;
	// File does not create it.
	Dir string
	// LockTimeout bounds how long an operation waits to acquire the
	// per-fingerprint lock before giving up. Defaults to 5s.
	LockTimeout time.Duration
}

// NewFile creates a durable store rooted at dir.
func NewFile(dir string) *File {
	return &File{Dir: dir, LockTimeout: 5 * time.Second}
}

func (f *File) entryPath(fingerprint string) string {
	return filepath.Join(f.Dir, fingerprint)
}

func (f *File) lockPath(fingerprint string) string {
	return filepath.Join(f.Dir, fingerprint+".lock")
}

func (f *File) withLock(fingerprint string, fn func() error) error {
	timeout := f.LockTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	path, err := filepath.Abs(f.lockPath(fingerprint))
	if err != nil {
		return err
	}
	lock := lockfile.Lockfile(path)

	deadline := time.Now().Add(timeout)
	for {
		err := lock.TryLock()
		if err == nil {
			break
		}
		if err == lockfile.ErrNotExist {
			// Lock file not visible yet, likely disk under load; retry.
		} else if err != lockfile.ErrBusy {
			return err
		}
		if time.Now().After(deadline) {
			return errors.New("store: timed out acquiring lock for " + fingerprint)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}()

	return fn()
}

func (f *File) Put(_ context.Context, fingerprint, uri string) error {
	return f.withLock(fingerprint, func() error {
		return os.WriteFile(f.entryPath(fingerprint), []byte(uri), defaultFilePerm)
	})
}

func (f *File) Get(_ context.Context, fingerprint string) (string, bool, error) {
	var data []byte
	var found bool
	err := f.withLock(fingerprint, func() error {
		var readErr error
		data, readErr = os.ReadFile(f.entryPath(fingerprint))
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				return nil
			}
			return readErr
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return "", false, err
	}
	return string(data), true, nil
}

// Delete removes only the single entry file for fingerprint. Earlier tus
// client implementations removed the entire containing directory here,
// which corrupts sibling entries when multiple fingerprints share a
// directory; this implementation deletes just the one file (see DESIGN.md,
// Q2).
func (f *File) Delete(_ context.Context, fingerprint string) error {
	return f.withLock(fingerprint, func() error {
		err := os.Remove(f.entryPath(fingerprint))
		if err != nil && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}
