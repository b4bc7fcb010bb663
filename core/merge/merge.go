package merge

import "strings"

const (
	placeholderPrefix = "ENC["
	placeholderSuffix = "]"
)

// IsPlaceholder reports whether a value is a masked credential placeholder
// rather than a resolved plaintext value. The server wraps masked values in
// a fixed ENC[...] sentinel.
func IsPlaceholder(v string) bool {
	return strings.HasPrefix(v, placeholderPrefix) && strings.HasSuffix(v, placeholderSuffix)
}

// Option configures a Policy.
type Option[T any] func(*Policy[T])

// WithStickyMap registers a credential map field as sticky-sensitive. The
// accessor must return a pointer to the field so the policy can rewrite it
// on the merged copy.
func WithStickyMap[T any](field func(*T) *map[string]string) Option[T] {
	return func(p *Policy[T]) {
		p.stickyMaps = append(p.stickyMaps, field)
	}
}

// Policy resolves an incoming document against the cached one. A zero
// policy (no sticky fields) is plain last-write-wins.
type Policy[T any] struct {
	stickyMaps []func(*T) *map[string]string
}

// NewPolicy builds a merge policy for one entity type.
func NewPolicy[T any](opts ...Option[T]) *Policy[T] {
	p := &Policy[T]{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve merges incoming over existing. The incoming document wins
// wholesale, except that resolved values in sticky-sensitive maps are
// carried forward when the incoming value for the same key is a
// placeholder. A nil existing returns incoming unchanged.
func (p *Policy[T]) Resolve(existing *T, incoming T) T {
	if existing == nil {
		return incoming
	}
	out := incoming
	for _, field := range p.stickyMaps {
		old := *field(existing)
		cur := field(&out)
		*cur = preserveResolved(old, *cur)
	}
	return out
}

// preserveResolved returns the incoming map with placeholder values replaced
// by the resolved values the cache already holds for the same keys. The
// incoming map is never mutated; a copy is made only when a value is
// actually carried over.
func preserveResolved(existing, incoming map[string]string) map[string]string {
	if len(existing) == 0 || len(incoming) == 0 {
		return incoming
	}
	var merged map[string]string
	for key, val := range incoming {
		if !IsPlaceholder(val) {
			continue
		}
		old, ok := existing[key]
		if !ok || IsPlaceholder(old) {
			continue
		}
		if merged == nil {
			merged = make(map[string]string, len(incoming))
			for k, v := range incoming {
				merged[k] = v
			}
		}
		merged[key] = old
	}
	if merged == nil {
		return incoming
	}
	return merged
}
