package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"clamsutils/internal/services"
)

// maxSuffix bounds the "-N" suffix search for unique output names.
const maxSuffix = 10000

// CreateUnique creates dir/stem+ext, or dir/stem-1+ext, dir/stem-2+ext, and
// so on when earlier names exist. Creation uses O_EXCL, so an existing file is
// never truncated even when another process races for the same name.
func CreateUnique(dir, stem, ext string, mode os.FileMode) (*os.File, error) {
	for n := 0; n < maxSuffix; n++ {
		name := stem + ext
		if n > 0 {
			name = stem + "-" + strconv.Itoa(n) + ext
		}
		file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
	}
	return nil, services.Wrap(services.ErrOutputConflict, "fileutil", "create unique",
		fmt.Sprintf("no free name for %s%s in %s", stem, ext, dir), nil)
}

// WriteUnique writes data to a fresh file chosen by CreateUnique and returns
// its path.
func WriteUnique(dir, stem, ext string, data []byte) (string, error) {
	return CopyUnique(dir, stem, ext, bytes.NewReader(data))
}

// CopyUnique streams r into a fresh file chosen by CreateUnique and returns
// its path. A failed copy removes the partial file.
func CopyUnique(dir, stem, ext string, r io.Reader) (string, error) {
	file, err := CreateUnique(dir, stem, ext, 0o644)
	if err != nil {
		return "", err
	}
	path := file.Name()
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// EnsureEmptyDir creates dir when absent and rejects it when it already holds
// entries.
func EnsureEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read directory %q: %w", dir, err)
	case len(entries) > 0:
		return services.Wrap(services.ErrOutputConflict, "fileutil", "check folder", fmt.Sprintf("%s is not empty", dir), nil)
	default:
		return nil
	}
}

// DirLock is an advisory lock on a sibling "<dir>.lock" file.
type DirLock struct {
	lock *flock.Flock
}

// LockDir takes a non-blocking lock for dir. Another process holding the
// lock yields ErrOutputConflict.
func LockDir(dir string) (*DirLock, error) {
	cleaned := strings.TrimRight(filepath.Clean(dir), string(filepath.Separator))
	if cleaned == "" {
		cleaned = string(filepath.Separator)
	}
	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return nil, fmt.Errorf("create lock parent: %w", err)
	}
	lock := flock.New(cleaned + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrOutputConflict, "fileutil", "lock", fmt.Sprintf("%s is in use by another process", dir), nil)
	}
	return &DirLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock and removes the lock file.
func (l *DirLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(l.lock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
