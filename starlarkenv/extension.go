package starlarkenv

import (
	"go.starlark.net/starlark"

	"github.com/starforge/starforge/bridge"
)

// Extension adds types and functions to an environment under assembly.
//
// Extensions populate after the core built-ins are bound and before the
// context constants, so they may rely on core names but must not expect the
// context handle yet. Reserved names (the core built-ins, the dialect
// built-ins, the context constants and handle) are off limits: an extension
// that binds or rebinds one fails assembly. An extension that publishes
// values on attrs should use its own type tag.
type Extension interface {
	// Name identifies the extension in assembly errors.
	Name() string

	// Populate installs the extension's globals and published attributes.
	Populate(globals starlark.StringDict, attrs *bridge.TypeAttrs) error
}
