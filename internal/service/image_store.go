package service

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"
)

// ImagesRoute is the URL prefix stored images are served under
const ImagesRoute = "images"

// ImageStore keeps generated images
type ImageStore interface {
	// Save writes data and returns the path it is served under
	Save(data []byte, format string) (string, error)
}

// FileStore writes images into a local directory named by creation time
type FileStore struct {
	Dir string
	now func() time.Time
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, now: time.Now}
}

// Save implements ImageStore. Files are named <unix-millis>.<format> and
// the returned path is relative to the server root, whatever Dir is.
func (s *FileStore) Save(data []byte, format string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}

	now := s.now
	if now == nil {
		now = time.Now
	}
	name := strconv.FormatInt(now().UnixMilli(), 10) + "." + format
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return path.Join(ImagesRoute, name), nil
}

// Writable reports whether files can be created in the directory
func (s *FileStore) Writable() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.Dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
