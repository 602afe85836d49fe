package buildtargets

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/starforge/starforge/bridge"
)

// TypeName tags the dialect's values on the bridge surface.
const TypeName = "BuildTargets"

// ContextBinding names the dialect context handle, both as a script global
// and on the bridge surface.
const ContextBinding = "BUILD_CONTEXT"

// Populate installs the dialect's built-ins and context handle into an
// environment under assembly. The handle is also published on attrs so the
// built-ins can resolve the context from the evaluating thread.
func Populate(globals starlark.StringDict, attrs *bridge.TypeAttrs, ctx *Context) error {
	bindings := []bridge.Binding{
		{Name: "register_target", Value: starlark.NewBuiltin("register_target", registerTarget)},
		{Name: "resolve_target", Value: starlark.NewBuiltin("resolve_target", resolveTarget)},
		{Name: "resolve_targets", Value: starlark.NewBuiltin("resolve_targets", resolveTargets)},
		{Name: ContextBinding, Value: bridge.Wrap(TypeName, ctx), Alias: true},
	}
	return bridge.BindAll(globals, attrs, TypeName, bindings)
}

// contextFrom recovers the dialect context attached to thread. The exclusive
// view is released before returning: target functions re-enter these
// built-ins, so no view may be held while script code runs. Thread
// confinement keeps the returned pointer safe.
func contextFrom(thread *starlark.Thread) (*Context, error) {
	h, err := bridge.ResolveHandle(thread, TypeName, ContextBinding)
	if err != nil {
		return nil, err
	}
	mut, err := h.DowncastMut(TypeName)
	if err != nil {
		return nil, err
	}
	ctx := mut.Entity().(*Context)
	mut.Release()
	return ctx, nil
}

// register_target(name, fn, depends=[], default=False, default_build_script=False)
func registerTarget(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name               string
		fn                 starlark.Callable
		depends            *starlark.List
		dflt               bool
		defaultBuildScript bool
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"fn", &fn,
		"depends?", &depends,
		"default?", &dflt,
		"default_build_script?", &defaultBuildScript,
	); err != nil {
		return nil, err
	}
	deps, err := stringList(depends)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	ctx, err := contextFrom(thread)
	if err != nil {
		return nil, err
	}
	if err := ctx.RegisterTarget(Target{
		Name:               name,
		Callable:           fn,
		Depends:            deps,
		Default:            dflt,
		DefaultBuildScript: defaultBuildScript,
	}); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// resolve_target(name)
func resolveTarget(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	ctx, err := contextFrom(thread)
	if err != nil {
		return nil, err
	}
	return ctx.ResolveTarget(thread, name)
}

// resolve_targets()
func resolveTargets(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	ctx, err := contextFrom(thread)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.ResolveWanted(thread); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func stringList(l *starlark.List) ([]string, error) {
	if l == nil {
		return nil, nil
	}
	out := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		s, ok := starlark.AsString(l.Index(i))
		if !ok {
			return nil, fmt.Errorf("depends[%d]: expected string, got %s", i, l.Index(i).Type())
		}
		out = append(out, s)
	}
	return out, nil
}
