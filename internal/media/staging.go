package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notemap-server/internal/domain"

	"github.com/google/uuid"
)

// Source resolves a local asset reference to its byte stream. The note
// service depends on this instead of the staging store directly.
type Source interface {
	Open(path string) (io.ReadCloser, error)
}

// StagingStore holds media a client has pushed to the server but has not yet
// attached to a saved note. Files live under a single directory and are named
// by UUID; a staged file becomes durable only when a note save uploads it to
// blob storage.
type StagingStore struct {
	dir string
}

func NewStagingStore(dir string) (*StagingStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging dir: %w", err)
	}

	return &StagingStore{dir: abs}, nil
}

// Stage writes the stream to a fresh staging file and returns the local
// reference a note can carry until its next save.
func (s *StagingStore) Stage(r io.Reader, ext string) (domain.AssetRef, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	path := filepath.Join(s.dir, uuid.New().String()+ext)

	f, err := os.Create(path)
	if err != nil {
		return domain.AssetRef{}, fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return domain.AssetRef{}, fmt.Errorf("failed to write staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.AssetRef{}, fmt.Errorf("failed to close staging file: %w", err)
	}

	return domain.LocalRef(path), nil
}

// Open returns the byte stream for a staged file. Paths outside the staging
// directory are rejected so a crafted reference cannot read arbitrary files.
func (s *StagingStore) Open(path string) (io.ReadCloser, error) {
	clean, err := s.contained(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged media: %w", err)
	}

	return f, nil
}

func (s *StagingStore) Remove(path string) error {
	clean, err := s.contained(path)
	if err != nil {
		return err
	}
	return os.Remove(clean)
}

// Sweep deletes staged files older than maxAge and reports how many went.
// Staged media that never made it into a saved note is the one orphan class
// the server can clean up on its own.
func (s *StagingStore) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func (s *StagingStore) contained(path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(s.dir, clean)
	}
	if clean != s.dir && !strings.HasPrefix(clean, s.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the staging area", path)
	}
	return clean, nil
}
