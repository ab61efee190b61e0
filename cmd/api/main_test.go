package main

import (
	"testing"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
)

func TestNewBlobStoreDiskDriver(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Driver:      config.StorageDriverDisk,
			DiskBaseDir: t.TempDir(),
			DiskBaseURL: "http://localhost:8080/storage",
		},
	}

	store, err := newBlobStore(cfg)
	if err != nil {
		t.Fatalf("newBlobStore: %v", err)
	}
	if store == nil {
		t.Fatal("expected a disk store")
	}
}

func TestNewBlobStoreCloudinaryRequiresURL(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverCloudinary},
	}

	if _, err := newBlobStore(cfg); err == nil {
		t.Fatal("expected an error without a cloudinary url")
	}
}

func TestNewBlobStoreRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "ftp"},
	}

	if _, err := newBlobStore(cfg); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
