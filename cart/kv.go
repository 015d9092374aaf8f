package cart

import "sync"

// KV is the opaque key-value capability the local cart and merge record are
// persisted through. How values survive restarts (cookies, local storage,
// a file) is the host's business; the reconciler only needs get/set/delete.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

var _ KV = (*MemoryKV)(nil)

// MemoryKV is a thread-safe in-memory KV, the default for headless clients
// and the backing store in tests.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	value, ok := kv.values[key]
	return value, ok
}

func (kv *MemoryKV) Set(key, value string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
}

func (kv *MemoryKV) Delete(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.values, key)
}
