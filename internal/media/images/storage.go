package images

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotFound is returned when a stored photo does not exist.
var ErrNotFound = errors.New("photo not found")

// ErrInvalidName is returned for names Storage could never have produced.
var ErrInvalidName = errors.New("invalid photo name")

var nameRe = regexp.MustCompile(`^[0-9a-f]{32}\.(jpg|png|gif|webp)$`)

// Storage keeps photos on disk under content-addressed names, so saving the
// same bytes twice yields the same name and never rewrites a published file.
type Storage struct {
	dir string
}

// NewStorage creates a Storage rooted at {basePath}/{subdir}.
func NewStorage(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	dir := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}
	return &Storage{dir: dir}, nil
}

// Name returns the content-addressed name for data of the given type.
func Name(data []byte, contentType string) (string, error) {
	ext := Extension(contentType)
	if ext == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]) + ext, nil
}

// Put stores data and returns its name. Writes go through a temp file and a
// rename so readers never observe a partial photo.
func (s *Storage) Put(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	name, err := Name(data, contentType)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close photo: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish photo: %w", err)
	}
	return name, nil
}

// Get reads a stored photo.
func (s *Storage) Get(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return data, nil
}

// Exists reports whether name is stored.
func (s *Storage) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes a stored photo. Missing photos are not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// Path returns the filesystem path for name after validating it.
func (s *Storage) Path(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Dir returns the directory photos are stored in.
func (s *Storage) Dir() string {
	return s.dir
}
