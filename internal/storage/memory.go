package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Listings are returned in lexical key order, with continuation tokens that
// behave like S3's: the token names the last key of the previous page.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data []byte
	opts PutOptions
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

// Put stores a copy of data under key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, opts PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = memObject{data: buf, opts: opts}
	return nil
}

// Get returns a copy of the object at key.
func (s *MemoryStore) Get(_ context.Context, key string, limit int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	if limit > 0 && int64(len(obj.data)) > limit {
		return nil, ErrTooLarge
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

// Exists reports whether an object is stored under key.
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Delete removes the object at key, reporting whether it existed.
func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return false, nil
	}
	delete(s.objects, key)
	return true, nil
}

// List returns one page of keys under prefix in lexical order.
func (s *MemoryStore) List(_ context.Context, prefix, token string, pageSize int) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) && key > token {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := Page{}
	for i, key := range keys {
		if pageSize > 0 && i >= pageSize {
			page.Truncated = true
			break
		}
		page.Objects = append(page.Objects, Object{Key: key, Size: int64(len(s.objects[key].data))})
	}
	if page.Truncated && len(page.Objects) > 0 {
		page.NextToken = page.Objects[len(page.Objects)-1].Key
	}
	return page, nil
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Metadata returns the PutOptions recorded for key, for inspection in tests.
func (s *MemoryStore) Metadata(key string) (PutOptions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.opts, ok
}
