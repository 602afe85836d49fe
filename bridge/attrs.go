package bridge

import (
	"sort"

	"go.starlark.net/starlark"
)

// TypeAttrs holds values published under a type tag and a name. One instance
// is shared by everything wired into a single environment.
//
// Publication happens during environment assembly, before any script runs;
// evaluation only reads. TypeAttrs is therefore unlocked.
type TypeAttrs struct {
	types map[string]starlark.StringDict
}

func NewTypeAttrs() *TypeAttrs {
	return &TypeAttrs{types: make(map[string]starlark.StringDict)}
}

// Publish records v under tag and name, overwriting any previous value.
func (t *TypeAttrs) Publish(tag, name string, v starlark.Value) {
	attrs, ok := t.types[tag]
	if !ok {
		attrs = make(starlark.StringDict)
		t.types[tag] = attrs
	}
	attrs[name] = v
}

// Lookup returns the value published under tag and name, or a
// *ResolutionError if nothing is.
func (t *TypeAttrs) Lookup(tag, name string) (starlark.Value, error) {
	if v, ok := t.types[tag][name]; ok {
		return v, nil
	}
	return nil, &ResolutionError{Tag: tag, Name: name}
}

// Names lists the names published under tag, sorted.
func (t *TypeAttrs) Names(tag string) []string {
	attrs := t.types[tag]
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// threadKey is the thread-local slot carrying the environment's TypeAttrs.
const threadKey = "starforge.bridge"

// Attach makes attrs resolvable from thread for the duration of evaluation.
func Attach(thread *starlark.Thread, attrs *TypeAttrs) {
	thread.SetLocal(threadKey, attrs)
}

// FromThread returns the TypeAttrs attached to thread, if any.
func FromThread(thread *starlark.Thread) (*TypeAttrs, bool) {
	attrs, ok := thread.Local(threadKey).(*TypeAttrs)
	return attrs, ok
}

// Resolve looks up tag/name on the thread's attached TypeAttrs. Built-ins
// resolve their collaborators this way rather than through a process-wide
// registry, so concurrent environments stay isolated.
func Resolve(thread *starlark.Thread, tag, name string) (starlark.Value, error) {
	attrs, ok := FromThread(thread)
	if !ok {
		return nil, &ResolutionError{Tag: tag, Name: name}
	}
	return attrs.Lookup(tag, name)
}

// ResolveHandle resolves tag/name and requires the result to be a *Handle.
func ResolveHandle(thread *starlark.Thread, tag, name string) (*Handle, error) {
	v, err := Resolve(thread, tag, name)
	if err != nil {
		return nil, err
	}
	h, ok := v.(*Handle)
	if !ok {
		return nil, &TypeMismatchError{Want: "handle", Got: v.Type()}
	}
	return h, nil
}
