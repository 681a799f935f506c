package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	uploadsDir = "uploads"
	resultsDir = "results"
)

var (
	// ErrInvalidFilename indicates an upload name that cannot be stored safely
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrInvalidRequestID indicates a request ID that is not a UUID
	ErrInvalidRequestID = errors.New("invalid request id")
)

// Store persists uploads and generated artifacts per request
type Store interface {
	EnsureDirs() error
	SaveUpload(ctx context.Context, requestID, filename string, src io.Reader) (string, error)
	WriteArtifact(ctx context.Context, requestID, name string, write func(io.Writer) error) (string, error)
	RemoveArtifacts(requestID string) error
	URL(storedPath string) (string, error)
}

// LocalStore keeps files under a static directory served over HTTP
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore creates a store rooted at root whose files are served under urlPrefix
func NewLocalStore(root, urlPrefix string) *LocalStore {
	return &LocalStore{
		root:      filepath.Clean(root),
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

// EnsureDirs creates the uploads and results directories
func (s *LocalStore) EnsureDirs() error {
	for _, dir := range []string{uploadsDir, resultsDir} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload writes the raw upload unmodified to uploads/<requestID>/<basename>
func (s *LocalStore) SaveUpload(ctx context.Context, requestID, filename string, src io.Reader) (string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	dir, err := s.requestDir(uploadsDir, requestID)
	if err != nil {
		return "", err
	}
	return writeAtomic(ctx, dir, name, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}

// WriteArtifact writes a generated file to results/<requestID>/<name>.
// The file appears only once write has succeeded.
func (s *LocalStore) WriteArtifact(ctx context.Context, requestID, name string, write func(io.Writer) error) (string, error) {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}
	dir, err := s.requestDir(resultsDir, requestID)
	if err != nil {
		return "", err
	}
	return writeAtomic(ctx, dir, clean, write)
}

// RemoveArtifacts deletes everything generated for a request
func (s *LocalStore) RemoveArtifacts(requestID string) error {
	dir, err := s.requestDir(resultsDir, requestID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// URL maps a stored path to its public URL
func (s *LocalStore) URL(storedPath string) (string, error) {
	rel, err := filepath.Rel(s.root, filepath.Clean(storedPath))
	if err != nil {
		return "", fmt.Errorf("path %q is not under %q: %w", storedPath, s.root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is not under %q", storedPath, s.root)
	}
	return path.Join(s.urlPrefix, filepath.ToSlash(rel)), nil
}

func (s *LocalStore) requestDir(kind, requestID string) (string, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRequestID, requestID)
	}
	return filepath.Join(s.root, kind, requestID), nil
}

// SanitizeFilename reduces a client-supplied name to a safe base name
func SanitizeFilename(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return base, nil
}

func writeAtomic(ctx context.Context, dir, name string, write func(io.Writer) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("publish %s: %w", name, err)
	}
	return final, nil
}
