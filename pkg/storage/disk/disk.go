package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"github.com/google/uuid"
)

// Store persists blobs on the local filesystem under a base directory and
// serves them through the /storage static route.
type Store struct {
	baseDir string
	baseURL string
}

// New validates the base directory and returns a disk-backed store.
func New(cfg config.StorageConfig) (*Store, error) {
	if cfg.DiskBaseDir == "" {
		return nil, fmt.Errorf("disk base dir is required")
	}
	if err := os.MkdirAll(cfg.DiskBaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &Store{
		baseDir: cfg.DiskBaseDir,
		baseURL: strings.TrimRight(cfg.DiskBaseURL, "/"),
	}, nil
}

// BaseDir exposes the root directory so the router can mount a file server.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Upload writes the payload under folder and returns the key/URL pair.
func (s *Store) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (*storage.Object, error) {
	if folder == "" {
		return nil, fmt.Errorf("folder is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := sanitizeFileName(filename)
	if name == "" {
		name = "file"
	}
	key := path.Join(folder, uuid.NewString()+"_"+name)

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &storage.Object{
		Key: key,
		URL: s.baseURL + "/" + key,
	}, nil
}

// Delete removes the blob at key. A missing file is reported as an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}

// resolve maps a key onto the base directory, refusing keys that escape it.
func (s *Store) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
