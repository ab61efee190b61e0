package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
)

// Store uploads blobs to Cloudinary. The returned key is the asset public ID,
// so deletes never have to reverse-engineer it from the delivery URL.
type Store struct {
	client       *cld.Cloudinary
	folderPrefix string
}

// New builds a Cloudinary-backed store from a cloudinary:// URL.
func New(cfg config.CloudinaryConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("cloudinary url is required")
	}
	client, err := cld.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	return &Store{
		client:       client,
		folderPrefix: strings.Trim(cfg.FolderPrefix, "/"),
	}, nil
}

// Upload pushes the payload into the requested folder under a fresh public ID.
func (s *Store) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (*storage.Object, error) {
	if folder == "" {
		return nil, fmt.Errorf("folder is required")
	}

	publicID := uuid.NewString()
	if base := baseName(filename); base != "" {
		publicID = base + "_" + publicID
	}

	resp, err := s.client.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:    s.qualifiedFolder(folder),
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	return &storage.Object{
		Key: resp.PublicID,
		URL: resp.SecureURL,
	}, nil
}

// Delete destroys the asset referenced by the stored public ID.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Result != "ok" {
		return fmt.Errorf("cloudinary destroy %s: %s", key, resp.Result)
	}
	return nil
}

func (s *Store) qualifiedFolder(folder string) string {
	folder = strings.Trim(folder, "/")
	if s.folderPrefix == "" || strings.HasPrefix(folder, s.folderPrefix+"/") {
		return folder
	}
	return s.folderPrefix + "/" + folder
}

// baseName strips the extension and anything path-like from the client name.
func baseName(filename string) string {
	base := path.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ReplaceAll(base, " ", "-")
}
