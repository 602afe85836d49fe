package buildtargets

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.starlark.net/starlark"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func constBuiltin(name, value string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return starlark.String(value), nil
	})
}

func failBuiltin(name, msg string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return nil, errors.New(msg)
	})
}

func TestDefaultTargetSelection(t *testing.T) {
	ctx := NewContext(zap.NewNop())

	ctx.RegisterTarget(Target{Name: "first", Callable: constBuiltin("first", "1")})
	if got := ctx.DefaultTarget(); got != "first" {
		t.Errorf("default = %q, want first (first registered)", got)
	}

	ctx.RegisterTarget(Target{Name: "second", Callable: constBuiltin("second", "2")})
	if got := ctx.DefaultTarget(); got != "first" {
		t.Errorf("default = %q, want first (nothing claimed it)", got)
	}

	ctx.RegisterTarget(Target{Name: "third", Callable: constBuiltin("third", "3"), Default: true})
	if got := ctx.DefaultTarget(); got != "third" {
		t.Errorf("default = %q, want third (explicit)", got)
	}
}

func TestRegisterTargetValidation(t *testing.T) {
	ctx := NewContext(zap.NewNop())

	if err := ctx.RegisterTarget(Target{Callable: constBuiltin("x", "x")}); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := ctx.RegisterTarget(Target{Name: "x"}); err == nil {
		t.Error("nil callable should be rejected")
	}
}

func TestTargetNamesKeepRegistrationOrder(t *testing.T) {
	ctx := NewContext(zap.NewNop())
	for _, name := range []string{"c", "a", "b"} {
		ctx.RegisterTarget(Target{Name: name, Callable: constBuiltin(name, name)})
	}
	// re-registration must not duplicate the entry
	ctx.RegisterTarget(Target{Name: "a", Callable: constBuiltin("a", "a2")})

	got := ctx.TargetNames()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestBuildScriptMode(t *testing.T) {
	ctx := NewContext(zap.NewNop(), WithBuildScriptMode())
	ctx.RegisterTarget(Target{Name: "exe", Callable: constBuiltin("exe", "exe")})
	ctx.RegisterTarget(Target{Name: "script", Callable: constBuiltin("script", "script"), DefaultBuildScript: true})

	got, err := ctx.ResolveWanted(&starlark.Thread{Name: "test"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].Name != "script" {
		t.Fatalf("resolved %v, want the build script target", got)
	}
}

func TestResolveWantedNoTargets(t *testing.T) {
	ctx := NewContext(zap.NewNop())
	if _, err := ctx.ResolveWanted(&starlark.Thread{Name: "test"}); err == nil {
		t.Fatal("expected error when nothing is registered")
	}
}

func TestResolveWantedCollectsAllErrors(t *testing.T) {
	ctx := NewContext(zap.NewNop(), WithWantTargets("good", "bad", "worse"))
	ctx.RegisterTarget(Target{Name: "good", Callable: constBuiltin("good", "ok")})
	ctx.RegisterTarget(Target{Name: "bad", Callable: failBuiltin("bad", "bad exploded")})

	got, err := ctx.ResolveWanted(&starlark.Thread{Name: "test"})
	if len(got) != 1 || got[0].Name != "good" {
		t.Errorf("resolved %v, want just the good target", got)
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	if !strings.Contains(errs[0].Error(), "bad exploded") {
		t.Errorf("first error = %v", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "not registered") {
		t.Errorf("second error = %v", errs[1])
	}
}

func TestResolveWantedOutputDir(t *testing.T) {
	state := newMockBuildContext()
	ctx := NewContext(zap.NewNop())
	ctx.SetState(state)
	ctx.RegisterTarget(Target{Name: "exe", Callable: constBuiltin("exe", "artifact")})

	got, err := ctx.ResolveWanted(&starlark.Thread{Name: "test"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(state.outputPath, "exe")
	if got[0].OutputDir != want {
		t.Errorf("OutputDir = %q, want %q", got[0].OutputDir, want)
	}
}

func TestUnknownStateKey(t *testing.T) {
	state := newMockBuildContext()

	_, err := state.GetStateString("flavor")
	var uk *UnknownKeyError
	if !errors.As(err, &uk) {
		t.Fatalf("expected *UnknownKeyError, got %v", err)
	}
	if uk.Key != "flavor" {
		t.Errorf("Key = %q, want flavor", uk.Key)
	}

	if _, err := state.GetStateBool(KeyOptLevel); !errors.As(err, &uk) {
		t.Errorf("bool accessor should reject string keys, got %v", err)
	}
	if _, err := state.GetStatePath(KeyRelease); !errors.As(err, &uk) {
		t.Errorf("path accessor should reject bool keys, got %v", err)
	}
}
