package metadatastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/renameio/v2"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/pkg/utils"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore persists each key as <dir>/<key>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get implements port.MetadataStore.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, ok, err := utils.ReadFileIfExists(p)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", p, err)
	}
	if !ok {
		return "", false, nil
	}
	return string(data), true, nil
}

// Set implements port.MetadataStore.
func (s *FileStore) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", s.dir, err)
	}
	// readers see either the old or the new mapping, never a partial write
	if err := renameio.WriteFile(p, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

var _ port.MetadataStore = (*FileStore)(nil)
