package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketRecords  = []byte("records")
	bucketCounters = []byte("counters")
)

// counterPrefix is the key namespace for NextSequence counters.
const counterPrefix = "_id:"

// BoltStore is a bbolt-backed implementation of Store. Records live in a
// single bucket keyed by their namespaced string key; sequence counters live
// in a separate bucket so a prefix scan over records never sees them.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketCounters} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *BoltStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(key))
		if data == nil {
			return ErrKeyNotFound
		}
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value under key, overwriting any previous value.
func (s *BoltStore) Put(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		return ErrNilValue
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRecords).Put([]byte(key), value); err != nil {
			return fmt.Errorf("store: put %q: %w", key, err)
		}
		return nil
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BoltStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRecords).Delete([]byte(key)); err != nil {
			return fmt.Errorf("store: delete %q: %w", key, err)
		}
		return nil
	})
}

// Iterate visits every key starting with prefix using a bucket cursor.
func (s *BoltStore) Iterate(prefix string, fn func(key string, value []byte) error) error {
	p := []byte(prefix)
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRecords).Cursor()
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			value := make([]byte, len(v))
			copy(value, v)
			if err := fn(string(k), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// NextSequence atomically increments and returns the named counter. The
// read-increment-write runs inside a single bbolt update transaction, so
// concurrent callers never observe the same value.
func (s *BoltStore) NextSequence(name string) (uint64, error) {
	if name == "" {
		return 0, ErrEmptyKey
	}

	var next uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCounters)
		key := []byte(counterPrefix + name)

		if data := b.Get(key); len(data) == 8 {
			next = binary.BigEndian.Uint64(data)
		}
		next++

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, next)
		if err := b.Put(key, buf); err != nil {
			return fmt.Errorf("store: put counter %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
