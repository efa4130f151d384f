package multisig

import "sync"

// keyedMutex serializes mutating operations per transaction ID. Every
// read-modify-write of a tx record (signature submission, cancellation,
// broadcast, status advancement) runs inside lock/unlock for its key, so
// two concurrent submissions can never both read the same signature count
// and lose a contribution or double-finalize.
//
// Entries are refcounted and removed once the last holder releases, so the
// map does not grow with the number of transactions ever seen.
type keyedMutex struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{keys: make(map[string]*keyLock)}
}

func (k *keyedMutex) lock(key string) {
	k.mu.Lock()
	entry, ok := k.keys[key]
	if !ok {
		entry = &keyLock{}
		k.keys[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

func (k *keyedMutex) unlock(key string) {
	k.mu.Lock()
	entry := k.keys[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.keys, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
