package bridge

import "go.starlark.net/starlark"

// Binding declares one name in an environment under assembly.
//
// A Binding with a Value installs it as a script global; if Alias is also
// set, the value is published on the TypeAttrs surface under the same name.
// A Binding with a nil Value is an alias of an earlier global: the name must
// already be bound, and its current value is republished on the TypeAttrs
// surface.
type Binding struct {
	Name  string
	Value starlark.Value
	Alias bool
}

// BindAll applies bindings to globals and attrs in declaration order,
// publishing aliases under tag. An alias whose source global has not been
// bound yet fails with *ResolutionError, since applying it would publish a
// name that resolves to nothing.
func BindAll(globals starlark.StringDict, attrs *TypeAttrs, tag string, bindings []Binding) error {
	for _, b := range bindings {
		if b.Value == nil {
			v, ok := globals[b.Name]
			if !ok {
				return &ResolutionError{Tag: tag, Name: b.Name}
			}
			attrs.Publish(tag, b.Name, v)
			continue
		}
		globals[b.Name] = b.Value
		if b.Alias {
			attrs.Publish(tag, b.Name, b.Value)
		}
	}
	return nil
}
