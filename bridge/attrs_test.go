package bridge

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.starlark.net/starlark"
)

func TestPublishLookup(t *testing.T) {
	attrs := NewTypeAttrs()
	attrs.Publish("StarForge", "CWD", starlark.String("/proj"))

	v, err := attrs.Lookup("StarForge", "CWD")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if s, _ := starlark.AsString(v); s != "/proj" {
		t.Errorf("lookup = %v, want /proj", v)
	}
}

func TestLookupUnknown(t *testing.T) {
	attrs := NewTypeAttrs()
	attrs.Publish("StarForge", "CWD", starlark.String("/proj"))

	_, err := attrs.Lookup("StarForge", "CONTEXT")
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
	if re.Tag != "StarForge" || re.Name != "CONTEXT" {
		t.Errorf("resolution error fields = %q/%q", re.Tag, re.Name)
	}

	if _, err := attrs.Lookup("Nothing", "CWD"); !errors.As(err, &re) {
		t.Errorf("unknown tag should also fail resolution, got %v", err)
	}
}

func TestResolveRequiresAttachment(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}

	var re *ResolutionError
	if _, err := Resolve(thread, "StarForge", "CONTEXT"); !errors.As(err, &re) {
		t.Fatalf("resolve on bare thread: got %v, want *ResolutionError", err)
	}

	attrs := NewTypeAttrs()
	attrs.Publish("StarForge", "CONTEXT", starlark.String("ctx"))
	Attach(thread, attrs)

	if _, err := Resolve(thread, "StarForge", "CONTEXT"); err != nil {
		t.Errorf("resolve after attach: %v", err)
	}
}

func TestResolveHandleKind(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}
	attrs := NewTypeAttrs()
	attrs.Publish("StarForge", "CWD", starlark.String("/proj"))
	attrs.Publish("StarForge", "CONTEXT", Wrap("EnvironmentContext", &fakeContext{}))
	Attach(thread, attrs)

	if _, err := ResolveHandle(thread, "StarForge", "CONTEXT"); err != nil {
		t.Fatalf("resolve handle: %v", err)
	}

	_, err := ResolveHandle(thread, "StarForge", "CWD")
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("resolving a string as a handle: got %v, want *TypeMismatchError", err)
	}
	if tm.Got != "string" {
		t.Errorf("Got = %q, want string", tm.Got)
	}
}

func TestBindAllOrder(t *testing.T) {
	globals := make(starlark.StringDict)
	attrs := NewTypeAttrs()

	bindings := []Binding{
		{Name: "set_build_path", Value: starlark.NewBuiltin("set_build_path", noopBuiltin)},
		{Name: "CWD", Value: starlark.String("/proj")},
		{Name: "CONTEXT", Value: Wrap("EnvironmentContext", &fakeContext{}), Alias: true},
		{Name: "CWD"},
		{Name: "set_build_path"},
	}
	if err := BindAll(globals, attrs, "StarForge", bindings); err != nil {
		t.Fatalf("bind: %v", err)
	}

	want := []string{"CONTEXT", "CWD", "set_build_path"}
	if diff := cmp.Diff(want, attrs.Names("StarForge")); diff != "" {
		t.Errorf("published names mismatch (-want +got):\n%s", diff)
	}

	for _, name := range want {
		v, err := attrs.Lookup("StarForge", name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if v != globals[name] {
			t.Errorf("%s: published value differs from global", name)
		}
	}
}

func TestBindAllAliasBeforeSource(t *testing.T) {
	globals := make(starlark.StringDict)
	attrs := NewTypeAttrs()

	bindings := []Binding{
		{Name: "CONTEXT"}, // alias declared before its source global
		{Name: "CONTEXT", Value: Wrap("EnvironmentContext", &fakeContext{})},
	}
	err := BindAll(globals, attrs, "StarForge", bindings)
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
	if re.Name != "CONTEXT" {
		t.Errorf("failed alias = %q, want CONTEXT", re.Name)
	}
}

func noopBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return starlark.None, nil
}
