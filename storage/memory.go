package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	createdAt   time.Time
}

// MemoryStore is an in-memory BlobStore used by tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memObject

	// Now supplies object timestamps; tests override it for age checks.
	Now func() time.Time
	// FailKeys forces Put to fail for the listed keys.
	FailKeys map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memObject),
		Now:     time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if m.FailKeys[key] {
		return "", fmt.Errorf("put %s: injected failure", key)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType, createdAt: m.Now()}
	m.mu.Unlock()
	return m.URL(key), nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	obj, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("get %s: object does not exist", key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[srcKey]
	if !ok {
		return fmt.Errorf("copy %s: object does not exist", srcKey)
	}
	m.objects[dstKey] = memObject{data: obj.data, contentType: obj.contentType, createdAt: m.Now()}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Metadata(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("head %s: object does not exist", key)
	}
	return &ObjectInfo{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		CreatedAt:   obj.createdAt,
	}, nil
}

func (m *MemoryStore) URL(key string) string {
	return "memory://" + key
}

// SetCreated backdates an object; the temp sweep tests use it.
func (m *MemoryStore) SetCreated(key string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[key]; ok {
		obj.createdAt = t
		m.objects[key] = obj
	}
}
