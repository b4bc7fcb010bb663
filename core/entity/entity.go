package entity

// Lifecycle classifies a record as active, trashed, or deleted.
type Lifecycle string

const (
	// LifecycleActive is the default state; the record belongs to the
	// primary collection.
	LifecycleActive Lifecycle = "active"
	// LifecycleTrashed records are held in the secondary trashed collection.
	LifecycleTrashed Lifecycle = "trashed"
	// LifecycleDeleted records are removed from both collections.
	LifecycleDeleted Lifecycle = "deleted"
)

// Entity is the contract every synchronized document type implements.
//
// The type parameter is the implementing type itself (recurring generic), so
// WithLifecycle can return the concrete type and stores can move values
// between collections without reflection or pointer juggling.
type Entity[T any] interface {
	// EntityID returns the stable server-assigned identifier.
	EntityID() string

	// EntityLifecycle returns the record's lifecycle state. Implementations
	// must map an absent wire value to LifecycleActive.
	EntityLifecycle() Lifecycle

	// WithLifecycle returns a copy of the record with the lifecycle replaced.
	WithLifecycle(Lifecycle) T
}

// NormalizeLifecycle maps the empty wire value to LifecycleActive.
// Documents from list endpoints frequently omit the field entirely.
func NormalizeLifecycle(lc Lifecycle) Lifecycle {
	if lc == "" {
		return LifecycleActive
	}
	return lc
}
