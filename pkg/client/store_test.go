package client

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/cache"
	"github.com/rs/zerolog"
)

// setCall records one Store.Set invocation.
type setCall struct {
	Silo  string
	Key   string
	Value []byte
	TTL   time.Duration
}

// recordingStore wraps a Store and records every call.
type recordingStore struct {
	cache.Store

	mu     sync.Mutex
	gets   int
	sets   []setCall
	purges []string
}

func (s *recordingStore) Get(ctx context.Context, silo, key string) ([]byte, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.Store.Get(ctx, silo, key)
}

func (s *recordingStore) Set(ctx context.Context, silo, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.sets = append(s.sets, setCall{Silo: silo, Key: key, Value: value, TTL: ttl})
	s.mu.Unlock()
	return s.Store.Set(ctx, silo, key, value, ttl)
}

func (s *recordingStore) Purge(ctx context.Context, silo string) error {
	s.mu.Lock()
	s.purges = append(s.purges, silo)
	s.mu.Unlock()
	return s.Store.Purge(ctx, silo)
}

func (s *recordingStore) Sets() []setCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]setCall(nil), s.sets...)
}

// setupTestStore opens a SQLite store in a temp dir wrapped for recording.
func setupTestStore(t *testing.T) *recordingStore {
	t.Helper()

	store, err := cache.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &recordingStore{Store: store}
}

// failingStore fails every operation.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, errStoreDown
}

func (failingStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return errStoreDown
}

func (failingStore) Purge(context.Context, string) error {
	return errStoreDown
}
