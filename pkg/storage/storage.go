package storage

import (
	"context"
	"io"
)

// Logical upload folders. They double as the key prefix on every backend, so a
// stored key always reveals which entity owned the blob.
const (
	FolderCategory         = "uploads/category"
	FolderProductImages    = "products/images"
	FolderProductSizeImage = "uploads/product-size-image"
)

// Object is the stable reference returned by a successful upload. Key is the
// backend-native identifier used for deletes; URL is what clients render.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store is the backend-agnostic blob store. Implementations must treat Delete
// of an unknown key as an error, not a no-op, so orphan bugs surface.
type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// File is an incoming upload handed from the HTTP layer to a service. Reader
// is consumed exactly once by Store.Upload.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}
