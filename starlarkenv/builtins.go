package starlarkenv

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/starforge/starforge/bridge"
)

// TypeName tags this environment's values on the bridge surface.
const TypeName = "StarForge"

// EnvironmentContextType tags the wrapped *EnvironmentContext handle.
const EnvironmentContextType = "EnvironmentContext"

// ContextBinding names the context handle, both as a script global and on
// the bridge surface.
const ContextBinding = "CONTEXT"

// currentContext resolves the environment context for a read-only built-in.
// The caller releases the view.
func currentContext(thread *starlark.Thread) (*EnvironmentContext, *bridge.Ref, error) {
	h, err := bridge.ResolveHandle(thread, TypeName, ContextBinding)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to resolve environment context: %w", err)
	}
	ref, err := h.DowncastRef(EnvironmentContextType)
	if err != nil {
		return nil, nil, err
	}
	return ref.Entity().(*EnvironmentContext), ref, nil
}

// print(*args)
//
// Renders arguments the way str() would, joins them with single spaces, and
// writes one warning-level log line through the context's logger. Returns
// None. Once the context resolves, printing cannot fail: the logger has no
// error path, which keeps print available to configs that run in degraded
// environments.
func printBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if s, ok := starlark.AsString(arg); ok {
			parts = append(parts, s)
		} else {
			parts = append(parts, arg.String())
		}
	}

	ec, ref, err := currentContext(thread)
	if err != nil {
		return nil, err
	}
	defer ref.Release()

	ec.Logger().Warn(strings.Join(parts, " "))
	return starlark.None, nil
}

// set_build_path(path)
//
// Redirects build output, resolving a relative path against the working
// directory. Mutates the context, so it takes the exclusive view of the
// context handle.
func setBuildPathBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &path); err != nil {
		return nil, err
	}

	h, err := bridge.ResolveHandle(thread, TypeName, ContextBinding)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve environment context: %w", err)
	}
	mut, err := h.DowncastMut(EnvironmentContextType)
	if err != nil {
		return nil, fmt.Errorf("set_build_path(): %w", err)
	}
	defer mut.Release()

	if err := mut.Entity().(*EnvironmentContext).SetBuildPath(path); err != nil {
		return nil, fmt.Errorf("set_build_path(): %w", err)
	}
	return starlark.None, nil
}
