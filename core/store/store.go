package store

import (
	"sync"

	"dash-sync/core/entity"
	"dash-sync/core/merge"
)

// Store caches one entity collection. All methods are safe for concurrent
// use; mutation is expected to come from a single sync session plus direct
// user-action handlers.
type Store[T entity.Entity[T]] struct {
	mu      sync.RWMutex
	policy  *merge.Policy[T]
	active  []T
	trashed []T
	loading bool
	stale   bool
	err     error
}

// New creates an empty store in the loading state. A nil policy falls back
// to plain last-write-wins.
func New[T entity.Entity[T]](policy *merge.Policy[T]) *Store[T] {
	if policy == nil {
		policy = merge.NewPolicy[T]()
	}
	return &Store[T]{policy: policy, loading: true}
}

// All returns a copy of the active collection, newest first.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.active))
	copy(out, s.active)
	return out
}

// Trashed returns a copy of the trashed collection.
func (s *Store[T]) Trashed() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.trashed))
	copy(out, s.trashed)
	return out
}

// Get looks up a record by id in the active collection first, then trashed.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.active, id); i >= 0 {
		return s.active[i], true
	}
	if i := indexOf(s.trashed, id); i >= 0 {
		return s.trashed[i], true
	}
	var zero T
	return zero, false
}

// Len returns the size of the active collection.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// Loading reports whether the store is awaiting its first hydration.
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last read error, or nil. A non-nil error coexists with
// stale-but-present data.
func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Upsert merges a record into the collection matching its lifecycle.
// Deleted records are removed outright; trashed records are moved out of the
// active collection; active records land at the front when new, in place
// when already cached. Applying the same record twice is a no-op merge.
func (s *Store[T]) Upsert(in T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(in)
}

func (s *Store[T]) upsertLocked(in T) {
	id := in.EntityID()
	switch entity.NormalizeLifecycle(in.EntityLifecycle()) {
	case entity.LifecycleDeleted:
		s.active = removeAt(s.active, indexOf(s.active, id))
		s.trashed = removeAt(s.trashed, indexOf(s.trashed, id))

	case entity.LifecycleTrashed:
		var existing *T
		if i := indexOf(s.active, id); i >= 0 {
			e := s.active[i]
			existing = &e
			s.active = removeAt(s.active, i)
		}
		if i := indexOf(s.trashed, id); i >= 0 {
			e := s.trashed[i]
			existing = &e
			s.trashed[i] = s.policy.Resolve(existing, in)
			return
		}
		s.trashed = prepend(s.trashed, s.policy.Resolve(existing, in))

	default:
		var existing *T
		if i := indexOf(s.trashed, id); i >= 0 {
			e := s.trashed[i]
			existing = &e
			s.trashed = removeAt(s.trashed, i)
		}
		if i := indexOf(s.active, id); i >= 0 {
			e := s.active[i]
			existing = &e
			s.active[i] = s.policy.Resolve(existing, in)
			return
		}
		s.active = prepend(s.active, s.policy.Resolve(existing, in))
	}
}

// Remove deletes a record from both collections unconditionally. Used for
// hard deletes.
func (s *Store[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = removeAt(s.active, indexOf(s.active, id))
	s.trashed = removeAt(s.trashed, indexOf(s.trashed, id))
}

// Restore moves a record out of the trashed collection back into active,
// forcing its lifecycle to active regardless of what the incoming document
// claims.
func (s *Store[T]) Restore(in T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(in.WithLifecycle(entity.LifecycleActive))
}

// Replace hydrates the store wholesale from an initial fetch. Incoming
// records are partitioned by lifecycle; loading, error, and staleness are
// cleared. No merging happens here: hydration follows a reset or first
// activation, when nothing resolved can be lost.
func (s *Store[T]) Replace(docs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = s.active[:0]
	s.trashed = s.trashed[:0]
	for _, doc := range docs {
		switch entity.NormalizeLifecycle(doc.EntityLifecycle()) {
		case entity.LifecycleDeleted:
			// Servers should not return deleted records from list
			// endpoints; drop them if one slips through.
		case entity.LifecycleTrashed:
			s.trashed = append(s.trashed, doc)
		default:
			s.active = append(s.active, doc)
		}
	}
	s.loading = false
	s.stale = false
	s.err = nil
}

// MergeCollection applies a poll result: the list is authoritative for the
// active collection's membership and order, but each record is merged
// through the policy against whatever the cache already holds, so sticky
// fields survive and unchanged rows keep their identity. Trashed records not
// present in the list are retained (list endpoints return active records).
func (s *Store[T]) MergeCollection(docs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]T, 0, len(docs))
	for _, doc := range docs {
		id := doc.EntityID()
		var existing *T
		if i := indexOf(s.active, id); i >= 0 {
			e := s.active[i]
			existing = &e
		} else if i := indexOf(s.trashed, id); i >= 0 {
			e := s.trashed[i]
			existing = &e
			s.trashed = removeAt(s.trashed, i)
		}
		merged := s.policy.Resolve(existing, doc)
		switch entity.NormalizeLifecycle(merged.EntityLifecycle()) {
		case entity.LifecycleDeleted:
		case entity.LifecycleTrashed:
			if i := indexOf(s.trashed, id); i >= 0 {
				s.trashed[i] = merged
			} else {
				s.trashed = prepend(s.trashed, merged)
			}
		default:
			next = append(next, merged)
		}
	}
	s.active = next
	s.loading = false
	s.stale = false
	s.err = nil
}

// Seed fills the collections from a persisted snapshot without clearing the
// loading flag: the data is known to be stale and the first fetch still
// owns hydration.
func (s *Store[T]) Seed(docs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loading || len(s.active) > 0 || len(s.trashed) > 0 {
		return
	}
	for _, doc := range docs {
		switch entity.NormalizeLifecycle(doc.EntityLifecycle()) {
		case entity.LifecycleDeleted:
		case entity.LifecycleTrashed:
			s.trashed = append(s.trashed, doc)
		default:
			s.active = append(s.active, doc)
		}
	}
}

// Reset clears everything and returns the store to the loading state.
// Called on workspace scope change: no record from the old scope may remain
// visible, even momentarily.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.trashed = nil
	s.loading = true
	s.stale = false
	s.err = nil
}

// SetError records a read failure. Existing data is left intact: a stale
// view degrades more gracefully than an empty one.
func (s *Store[T]) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.loading = false
}

// MarkStale flags the collection for refresh on next read. Used by
// cross-entity propagation for eventual dependencies.
func (s *Store[T]) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// Stale reports whether a refresh has been requested.
func (s *Store[T]) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func indexOf[T entity.Entity[T]](list []T, id string) int {
	for i, item := range list {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](list []T, i int) []T {
	if i < 0 {
		return list
	}
	return append(list[:i], list[i+1:]...)
}

func prepend[T any](list []T, item T) []T {
	return append([]T{item}, list...)
}
