package session

import (
	"context"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = "1"
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string { return "bd:session:access:" + accessID }

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: mockKeyer{}, ttl: time.Minute}, store
}

func TestSessionLifecycle(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if err := mgr.Create(ctx, accessID); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	ok, err := mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after create")
	}

	if err := mgr.Revoke(ctx, accessID); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	ok, err = mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestHasSessionUnknownID(t *testing.T) {
	mgr, _ := newTestManager()

	ok, err := mgr.HasSession(context.Background(), "never-created")
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if ok {
		t.Fatal("expected no session for unknown id")
	}
}

func TestCreateRejectsEmptyAccessID(t *testing.T) {
	mgr, _ := newTestManager()
	if err := mgr.Create(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
