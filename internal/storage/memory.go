package storage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory is an in-process BlobStore for local development and tests.
// Minted URLs use the memory:// scheme and carry their expiry and a nonce,
// so every mint yields a distinct URL.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
	nonce   uint64
	now     func() time.Time
}

var _ BlobStore = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// Put stores a copy of data under name.
func (m *Memory) Put(_ context.Context, name string, data []byte, contentType string) error {
	if name == "" {
		return fmt.Errorf("put object: empty name")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[name] = memoryObject{data: buf, contentType: contentType}
	m.mu.Unlock()
	return nil
}

// Exists reports whether name is stored.
func (m *Memory) Exists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	_, ok := m.objects[name]
	m.mu.RUnlock()
	return ok, nil
}

// Delete removes name if present.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.objects, name)
	m.mu.Unlock()
	return nil
}

// MintTemporaryURL returns a fresh memory:// URL for a stored object.
func (m *Memory) MintTemporaryURL(_ context.Context, name string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return "", fmt.Errorf("presign %q: %w", name, ErrNotFound)
	}
	m.nonce++

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(m.now().Add(ttl).Unix(), 10))
	q.Set("nonce", strconv.FormatUint(m.nonce, 10))
	u := url.URL{Scheme: "memory", Host: m.bucket, Path: "/" + name, RawQuery: q.Encode()}
	return u.String(), nil
}

// Object returns a copy of the stored bytes and content type.
func (m *Memory) Object(name string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	if !ok {
		return nil, "", false
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, obj.contentType, true
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
