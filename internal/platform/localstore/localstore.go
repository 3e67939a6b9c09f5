package localstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

var (
	ErrInvalidName = errors.New("localstore: invalid file name")
	ErrExists      = errors.New("localstore: file already exists")
)

// Store keeps uploaded files flat inside one directory.
type Store struct {
	dir string
	log *logger.Logger
}

func New(dir string, log *logger.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("localstore: missing directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("localstore: resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create %q: %w", abs, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{dir: abs, log: log.With("component", "LocalStore", "dir", abs)}, nil
}

// Path resolves name inside the store without touching the filesystem.
func (s *Store) Path(name string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Create writes r to a new file. An existing file with the same name is never
// overwritten, and a partial file is removed if the copy fails.
func (s *Store) Create(name string, r io.Reader) (int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, ErrExists
		}
		return 0, err
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn("failed to remove partial upload", "file", name, "error", rmErr)
		}
		return 0, copyErr
	}
	s.log.Debug("stored file", "file", name, "bytes", n)
	return n, nil
}

// Exists reports whether name is a regular file in the store.
func (s *Store) Exists(name string) (bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}
