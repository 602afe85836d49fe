package bridge

import (
	"fmt"
	"sync"

	"go.starlark.net/starlark"
)

// Handle is an opaque Starlark value wrapping a host entity. The zero value
// is not useful; construct handles with Wrap.
type Handle struct {
	tag    string
	entity any

	mu        sync.Mutex
	shared    int
	exclusive bool
}

// Wrap ties entity to tag and returns the script-visible handle.
func Wrap(tag string, entity any) *Handle {
	return &Handle{tag: tag, entity: entity}
}

// Tag returns the type tag the handle was wrapped with.
func (h *Handle) Tag() string { return h.tag }

// Handles are opaque to scripts: they render as their tag, are always
// truthy, and cannot be used as dict keys.

func (h *Handle) String() string       { return "<" + h.tag + ">" }
func (h *Handle) Type() string         { return h.tag }
func (h *Handle) Truth() starlark.Bool { return starlark.True }

// Freeze is a no-op. Mutation of the entity is governed by the view
// discipline below, not by Starlark's freeze protocol.
func (h *Handle) Freeze() {}

func (h *Handle) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", h.tag)
}

// DowncastRef verifies the handle's tag and takes a shared, read-only view
// of the entity. It fails with *TypeMismatchError if tag does not match and
// with ErrBorrowConflict while an exclusive view is outstanding.
func (h *Handle) DowncastRef(tag string) (*Ref, error) {
	if h.tag != tag {
		return nil, &TypeMismatchError{Want: tag, Got: h.tag}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exclusive {
		return nil, fmt.Errorf("downcast %s: %w", h.tag, ErrBorrowConflict)
	}
	h.shared++
	return &Ref{h: h}, nil
}

// DowncastMut verifies the handle's tag and takes the exclusive view of the
// entity. It fails with *TypeMismatchError if tag does not match and with
// ErrBorrowConflict while any other view, shared or exclusive, is
// outstanding.
func (h *Handle) DowncastMut(tag string) (*MutRef, error) {
	if h.tag != tag {
		return nil, &TypeMismatchError{Want: tag, Got: h.tag}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exclusive || h.shared > 0 {
		return nil, fmt.Errorf("downcast %s: %w", h.tag, ErrBorrowConflict)
	}
	h.exclusive = true
	return &MutRef{h: h}, nil
}

// Ref is a shared view of a handle's entity. Holders must not mutate the
// entity through it.
type Ref struct {
	h    *Handle
	done bool
}

// Entity returns the wrapped host entity.
func (r *Ref) Entity() any { return r.h.entity }

// Release ends the view. Releasing twice is a no-op.
func (r *Ref) Release() {
	r.h.mu.Lock()
	if !r.done {
		r.done = true
		r.h.shared--
	}
	r.h.mu.Unlock()
}

// MutRef is the exclusive view of a handle's entity.
type MutRef struct {
	h    *Handle
	done bool
}

// Entity returns the wrapped host entity.
func (m *MutRef) Entity() any { return m.h.entity }

// Release ends the view. Releasing twice is a no-op.
func (m *MutRef) Release() {
	m.h.mu.Lock()
	if !m.done {
		m.done = true
		m.h.exclusive = false
	}
	m.h.mu.Unlock()
}
