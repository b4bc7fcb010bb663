package entity

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ref is a reference to an entity that may arrive either as a bare id or as
// a fully inlined document, depending on which endpoint produced it.
//
// The zero value is an empty reference. Use Resolve to normalize a Ref to an
// inlined document before it crosses into the merge path; the ambiguity must
// never propagate past the session boundary.
type Ref[T Entity[T]] struct {
	id     string
	inline *T
}

// InlineRef builds a reference around a full document.
func InlineRef[T Entity[T]](doc T) Ref[T] {
	return Ref[T]{id: doc.EntityID(), inline: &doc}
}

// IDRef builds an id-only reference.
func IDRef[T Entity[T]](id string) Ref[T] {
	return Ref[T]{id: id}
}

// ID returns the referenced entity id, for both forms.
func (r Ref[T]) ID() string {
	return r.id
}

// Inline returns the embedded document if the reference carries one.
func (r Ref[T]) Inline() (T, bool) {
	if r.inline == nil {
		var zero T
		return zero, false
	}
	return *r.inline, true
}

// Resolve returns the inlined document, fetching it by id when the reference
// is id-only. It never returns a partially populated document.
func (r Ref[T]) Resolve(ctx context.Context, get func(context.Context, string) (T, error)) (T, error) {
	if r.inline != nil {
		return *r.inline, nil
	}
	var zero T
	if r.id == "" {
		return zero, fmt.Errorf("cannot resolve empty reference")
	}
	doc, err := get(ctx, r.id)
	if err != nil {
		return zero, fmt.Errorf("failed to resolve reference %s: %w", r.id, err)
	}
	return doc, nil
}

// UnmarshalJSON accepts three wire shapes: a JSON string (bare id), an object
// containing only "_id" (id-only document), or a full document object.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	// Bare id string.
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = Ref[T]{id: id}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("reference is neither id nor document: %w", err)
	}

	// An object that carries nothing but its id is treated as id-only: the
	// list endpoint and push channel both produce this shape.
	if len(fields) == 1 {
		if raw, ok := fields["_id"]; ok {
			if err := json.Unmarshal(raw, &id); err != nil {
				return fmt.Errorf("invalid _id in reference: %w", err)
			}
			*r = Ref[T]{id: id}
			return nil
		}
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = Ref[T]{id: doc.EntityID(), inline: &doc}
	return nil
}

// MarshalJSON writes the full document when inlined, otherwise the bare id.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.inline != nil {
		return json.Marshal(*r.inline)
	}
	return json.Marshal(r.id)
}
