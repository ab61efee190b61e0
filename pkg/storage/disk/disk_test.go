package disk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(config.StorageConfig{
		DiskBaseDir: t.TempDir(),
		DiskBaseURL: "http://localhost:8080/storage/",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return store
}

func TestUploadAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	obj, err := store.Upload(ctx, storage.FolderCategory, "chair photo.png", "image/png", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !strings.HasPrefix(obj.Key, storage.FolderCategory+"/") {
		t.Fatalf("key %q missing folder prefix", obj.Key)
	}
	if strings.Contains(obj.Key, " ") {
		t.Fatalf("key %q should not contain spaces", obj.Key)
	}
	if !strings.HasPrefix(obj.URL, "http://localhost:8080/storage/") {
		t.Fatalf("unexpected URL %q", obj.URL)
	}

	onDisk := filepath.Join(store.BaseDir(), filepath.FromSlash(obj.Key))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("reading stored blob: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected blob contents %q", data)
	}

	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatal("expected blob to be removed from disk")
	}
}

func TestDeleteUnknownKeyFails(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "uploads/category/nope.png"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "../secrets"); err == nil {
		t.Fatal("expected error for traversal key")
	}
}

func TestUploadKeysAreUniquePerCall(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upload(ctx, storage.FolderProductImages, "a.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	second, err := store.Upload(ctx, storage.FolderProductImages, "a.png", "image/png", strings.NewReader("y"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if first.Key == second.Key {
		t.Fatalf("expected distinct keys, both %q", first.Key)
	}
}
