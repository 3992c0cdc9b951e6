package trust

import "sync"

type entry[T any] struct {
	mu  sync.Mutex
	val T
}

// keyed stores one lockable value per asset.
type keyed[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
}

func newKeyed[T any]() *keyed[T] {
	return &keyed[T]{entries: make(map[string]*entry[T])}
}

// with runs fn while holding the lock of the asset entry, creating it on first use.
func (k *keyed[T]) with(id string, fn func(v *T, fresh bool)) {
	k.mu.RLock()
	e, ok := k.entries[id]
	k.mu.RUnlock()
	fresh := false
	if !ok {
		k.mu.Lock()
		e, ok = k.entries[id]
		if !ok {
			e = &entry[T]{}
			k.entries[id] = e
			fresh = true
		}
		k.mu.Unlock()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.val, fresh)
}

func (k *keyed[T]) reset(id string) {
	k.mu.Lock()
	delete(k.entries, id)
	k.mu.Unlock()
}

func (k *keyed[T]) len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries)
}
