package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/breaddesk/breaddesk-backend/pkg/storage"
)

// Store is an in-memory storage.Store for tests. Delete of an unknown key
// fails, mirroring the real backends.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	counter int

	UploadErr error
	DeleteErr error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{objects: map[string][]byte{}}
}

// Upload records the blob under a deterministic per-store key.
func (s *Store) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (*storage.Object, error) {
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	key := fmt.Sprintf("%s/%d_%s", folder, s.counter, filename)
	s.objects[key] = data
	return &storage.Object{Key: key, URL: "https://blobs.test/" + key}, nil
}

// Delete removes the blob and records the key.
func (s *Store) Delete(_ context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("storagetest: unknown key %q", key)
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// Has reports whether the key currently holds a blob.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Deleted returns the keys removed so far, in order.
func (s *Store) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
