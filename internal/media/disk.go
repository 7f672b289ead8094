// Package media stores uploaded audio blobs on disk.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes each blob under a generated unique filename. Writes go to
// a temp file first and are renamed into place, so a failed upload never
// touches previously stored blobs.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the directory if needed. baseURL is the public path
// prefix under which the directory is served, e.g. "/media".
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save persists the blob and returns its URL. The original filename only
// contributes its extension.
func (s *DiskStore) Save(audio io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}
	name := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("store audio: %w", err)
	}
	if _, err := io.Copy(tmp, audio); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store audio: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Dir returns the directory blobs are stored in, for static serving.
func (s *DiskStore) Dir() string { return s.dir }
