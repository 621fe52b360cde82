// Package memory is a map-backed storage.KV for tests and throwaway sessions.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"prodhub/internal/storage"
)

type KV struct {
	mu       sync.Mutex
	values   map[string][]byte
	failWith error
	closed   bool
}

var _ storage.KV = (*KV)(nil)

func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

// NewFromDir seeds the store with every <key>.json file found in base.
// A missing directory yields an empty store.
func NewFromDir(base string) *KV {
	kv := New()
	entries, err := os.ReadDir(base)
	if err != nil {
		return kv
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(base, e.Name()))
		if err != nil {
			continue
		}
		kv.values[strings.TrimSuffix(e.Name(), ".json")] = b
	}
	return kv
}

// FailWrites makes every subsequent Set and Delete return err. Pass nil to recover.
func (s *KV) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *KV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, storage.ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *KV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if s.failWith != nil {
		return s.failWith
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.values, key)
	return nil
}

func (s *KV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
