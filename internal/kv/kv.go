// Package kv is the key-value persistence collaborator behind the content
// lists. Values are stored as JSON documents; concurrent writers to the same
// key are last-write-wins.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var ErrEmptyKey = errors.New("kv: empty key")

// Store reads and writes JSON values. Get reports false when the key has
// never been written, leaving dst untouched.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

func encode(key string, value any) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

var _ Store = (*Memory)(nil)

// Memory keeps values in process. It backs tests and the memory backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	data, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, decode(key, data, dst)
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = data
	m.mu.Unlock()
	return nil
}
