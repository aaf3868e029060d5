package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// LocalStorage stores objects on the local filesystem under a base
// directory. Public IDs are "<folder>/<uuid><ext>" relative paths, so a
// cloud backend can adopt the same scheme.
type LocalStorage struct {
	baseDir string
	baseURL string
}

func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Store(ctx context.Context, r io.Reader, folder, filename, mimeType string) (*StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	publicID := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+filepath.Ext(filename)))
	path := filepath.Join(s.baseDir, filepath.FromSlash(publicID))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create object file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close object file: %w", err)
	}

	return &StoredObject{
		URL:          s.baseURL + "/" + publicID,
		PublicID:     publicID,
		ResourceType: ResourceTypeFor(mimeType),
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicID string, _ models.AttachmentType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(publicID))
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.baseDir)) {
		return fmt.Errorf("public id escapes storage directory: %s", publicID)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
