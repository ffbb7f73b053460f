package kv

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore 进程内存储，键统一加上 prefix。
type MemoryStore struct {
	prefix string

	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemoryStore 创建内存存储。
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrStoreClosed
	}
	v, ok := m.data[m.prefix+key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryStore) Put(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.data[m.prefix+key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrStoreClosed
	}
	_, ok := m.data[m.prefix+key]
	delete(m.data, m.prefix+key)
	return ok, nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	full := m.prefix + prefix
	out := make(map[string]string)
	for k, v := range m.data {
		if strings.HasPrefix(k, full) {
			out[strings.TrimPrefix(k, m.prefix)] = v
		}
	}
	return out, nil
}

// Close 清空数据，之后的操作返回 ErrStoreClosed。
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
