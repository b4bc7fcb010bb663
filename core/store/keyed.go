package store

import (
	"sort"
	"sync"

	"dash-sync/core/entity"
	"dash-sync/core/merge"
)

// KeyedStores manages child stores partitioned by a parent id, such as the
// run list of each batch test. Children are created lazily on first access
// and share one merge policy.
type KeyedStores[T entity.Entity[T]] struct {
	mu     sync.Mutex
	policy *merge.Policy[T]
	stores map[string]*Store[T]
}

// NewKeyed creates an empty keyed store set.
func NewKeyed[T entity.Entity[T]](policy *merge.Policy[T]) *KeyedStores[T] {
	if policy == nil {
		policy = merge.NewPolicy[T]()
	}
	return &KeyedStores[T]{policy: policy, stores: make(map[string]*Store[T])}
}

// For returns the child store for a key, creating it on first use. Child
// stores are push-fed rather than fetch-hydrated, so they start out of the
// loading state.
func (k *KeyedStores[T]) For(key string) *Store[T] {
	k.mu.Lock()
	defer k.mu.Unlock()
	st, ok := k.stores[key]
	if !ok {
		st = New(k.policy)
		st.mu.Lock()
		st.loading = false
		st.mu.Unlock()
		k.stores[key] = st
	}
	return st
}

// Keys returns the known parent ids in sorted order.
func (k *KeyedStores[T]) Keys() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys := make([]string, 0, len(k.stores))
	for key := range k.stores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops all child stores. Called on workspace scope change.
func (k *KeyedStores[T]) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stores = make(map[string]*Store[T])
}
