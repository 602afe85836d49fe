package starlarkenv

import (
	"fmt"

	starlarkjson "go.starlark.net/lib/json"
	starlarktime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"

	"github.com/starforge/starforge/bridge"
	"github.com/starforge/starforge/buildtargets"
)

// Environment is an assembled script environment: the predeclared names
// configs see and the bridge surface built-ins resolve against.
type Environment struct {
	Predeclared starlark.StringDict
	Attrs       *bridge.TypeAttrs
}

// NewEnvironment assembles the environment for one evaluation. Assembly is
// ordered: value modules, then the build targets dialect, then this
// environment's built-ins, then extensions, and finally the context
// constants, the context handle, and the alias pass that republishes the
// context-facing names on the bridge surface. Aliases trail everything they
// republish; an alias ahead of its source fails assembly.
func NewEnvironment(ec *EnvironmentContext, bt *buildtargets.Context, exts []Extension) (*Environment, error) {
	globals := make(starlark.StringDict)
	attrs := bridge.NewTypeAttrs()

	globals["json"] = starlarkjson.Module
	globals["time"] = starlarktime.Module

	if err := buildtargets.Populate(globals, attrs, bt); err != nil {
		return nil, fmt.Errorf("populate build targets dialect: %w", err)
	}

	if err := bridge.BindAll(globals, attrs, TypeName, []bridge.Binding{
		{Name: "print", Value: starlark.NewBuiltin("print", printBuiltin)},
		{Name: "set_build_path", Value: starlark.NewBuiltin("set_build_path", setBuildPathBuiltin)},
	}); err != nil {
		return nil, fmt.Errorf("bind built-ins: %w", err)
	}

	// Reserved names must survive the extension slot untouched: the alias
	// pass below republishes some of them by name, so a rebind here would
	// leak the extension's value onto the bridge surface.
	reserved := make(map[string]starlark.Value, len(coreGlobals))
	for _, name := range coreGlobals {
		reserved[name] = globals[name]
	}
	for _, ext := range exts {
		if err := ext.Populate(globals, attrs); err != nil {
			return nil, fmt.Errorf("populate extension %q: %w", ext.Name(), err)
		}
		if err := checkReserved(globals, reserved, ext.Name()); err != nil {
			return nil, err
		}
	}

	if err := bridge.BindAll(globals, attrs, TypeName, []bridge.Binding{
		{Name: "CWD", Value: starlark.String(ec.Cwd())},
		{Name: "CONFIG_PATH", Value: starlark.String(ec.ConfigPath())},
		{Name: "BUILD_TARGET_TRIPLE", Value: starlark.String(ec.TargetTriple())},
		{Name: ContextBinding, Value: bridge.Wrap(EnvironmentContextType, ec)},
		{Name: ContextBinding},
		{Name: "CWD"},
		{Name: "CONFIG_PATH"},
		{Name: "BUILD_TARGET_TRIPLE"},
		{Name: "set_build_path"},
	}); err != nil {
		return nil, fmt.Errorf("bind context values: %w", err)
	}

	if err := verifyEnvironment(globals, attrs); err != nil {
		return nil, err
	}
	return &Environment{Predeclared: globals, Attrs: attrs}, nil
}

// coreGlobals are the names every assembled environment must bind.
var coreGlobals = []string{
	"json",
	"time",
	"register_target",
	"resolve_target",
	"resolve_targets",
	buildtargets.ContextBinding,
	"print",
	"set_build_path",
	"CWD",
	"CONFIG_PATH",
	"BUILD_TARGET_TRIPLE",
	ContextBinding,
}

// publishedNames are the context-facing names the alias pass republishes on
// the bridge surface.
var publishedNames = []string{
	ContextBinding,
	"CWD",
	"CONFIG_PATH",
	"BUILD_TARGET_TRIPLE",
	"set_build_path",
}

// checkReserved compares the reserved globals against their values before
// the extension ran. Names not yet bound at the extension slot (the context
// constants and handle) must still be unbound afterwards.
func checkReserved(globals starlark.StringDict, before map[string]starlark.Value, extName string) error {
	for name, want := range before {
		got, bound := globals[name]
		if want == nil {
			if bound {
				return fmt.Errorf("extension %q binds reserved name %q", extName, name)
			}
			continue
		}
		if got != want {
			return fmt.Errorf("extension %q rebinds reserved name %q", extName, name)
		}
	}
	return nil
}

// verifyEnvironment checks every name the built-ins depend on before any
// script runs, so wiring defects surface at assembly time rather than as
// resolution failures mid-evaluation.
func verifyEnvironment(globals starlark.StringDict, attrs *bridge.TypeAttrs) error {
	for _, name := range coreGlobals {
		if _, ok := globals[name]; !ok {
			return fmt.Errorf("assembled environment is missing global %q", name)
		}
	}
	for _, name := range publishedNames {
		if _, err := attrs.Lookup(TypeName, name); err != nil {
			return fmt.Errorf("verify environment: %w", err)
		}
	}
	if _, err := attrs.Lookup(buildtargets.TypeName, buildtargets.ContextBinding); err != nil {
		return fmt.Errorf("verify environment: %w", err)
	}
	return nil
}
