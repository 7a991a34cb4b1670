// Package storage provides the persisted key/value slots shared by every
// ninja command. A slot holds one JSON document under a well-known key.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrClosed is returned by operations on a closed Slots.
var ErrClosed = errors.New("storage: slots closed")

// Write is a single put or delete inside an Apply batch.
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// Put returns a Write that stores value under key.
func Put(key string, value []byte) Write {
	return Write{Key: key, Value: value}
}

// Delete returns a Write that removes key.
func Delete(key string) Write {
	return Write{Key: key, Delete: true}
}

// Slots is the single-slot-per-key persistence used by the profile store.
// Apply is atomic: a concurrent Get sees either none or all of a batch.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Apply(ctx context.Context, writes ...Write) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Memory is an in-process Slots used by tests and --ephemeral runs.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory slot set.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Apply runs every write under one lock.
func (m *Memory) Apply(_ context.Context, writes ...Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, w := range writes {
		if w.Delete {
			delete(m.data, w.Key)
			continue
		}
		v := make([]byte, len(w.Value))
		copy(v, w.Value)
		m.data[w.Key] = v
	}
	return nil
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the slot set closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
