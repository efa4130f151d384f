package store

import (
	"strings"
	"sync"
)

// Store is a string-keyed durable store for JSON-encoded records.
// It is the single source of truth for wallet and transaction state;
// no component keeps long-lived in-memory copies of its records.
//
// Keys are namespaced by prefix: "wallet:<id>", "tx:<id>" and "_id:<name>"
// for the ID-generation counters behind NextSequence.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Iterate visits every key starting with prefix. Order is not
	// guaranteed. Iteration stops at the first error returned by fn.
	Iterate(prefix string, fn func(key string, value []byte) error) error

	// NextSequence atomically increments and returns the named counter.
	// The first call for a name returns 1. Counters are persisted under
	// the "_id:" namespace and are never reused or reset.
	NextSequence(name string) (uint64, error)
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	seqs map[string]uint64
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string][]byte),
		seqs: make(map[string]uint64),
	}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *MemStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value under key.
func (s *MemStore) Put(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		return ErrNilValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes key.
func (s *MemStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Iterate visits every key starting with prefix over a point-in-time
// snapshot, so fn may call back into the store without deadlocking.
func (s *MemStore) Iterate(prefix string, fn func(key string, value []byte) error) error {
	s.mu.RLock()
	snapshot := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			snapshot[k] = v
		}
	}
	s.mu.RUnlock()

	for k, v := range snapshot {
		out := make([]byte, len(v))
		copy(out, v)
		if err := fn(k, out); err != nil {
			return err
		}
	}
	return nil
}

// NextSequence atomically increments and returns the named counter.
func (s *MemStore) NextSequence(name string) (uint64, error) {
	if name == "" {
		return 0, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqs[name]++
	return s.seqs[name], nil
}
