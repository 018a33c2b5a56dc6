package cache

import (
	"context"
	"sync"

	"nftStatApp/internal/domain/repository"
)

// MemoryBlobStore keeps blobs in process memory. Nothing survives a restart;
// used for BLOB_BACKEND=memory and in tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

var _ repository.BlobStore = (*MemoryBlobStore)(nil)

func (m *MemoryBlobStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBlobStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBlobStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryBlobStore) Close() error {
	return nil
}
