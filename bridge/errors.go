package bridge

import (
	"errors"
	"fmt"
)

// ErrBorrowConflict is returned by DowncastRef and DowncastMut when the
// requested view cannot coexist with views already outstanding.
var ErrBorrowConflict = errors.New("conflicting view of bridged value")

// TypeMismatchError is returned when a handle is downcast against a tag it
// was not wrapped with, or when a resolved value is not of the kind the
// caller required.
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected value of type %q, got %q", e.Want, e.Got)
}

// ResolutionError is returned when no value is published under a tag/name
// pair. During evaluation this indicates an environment assembled without a
// binding its built-ins depend on, which is a wiring defect, not a script
// error.
type ResolutionError struct {
	Tag  string
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no value named %q published for type %q", e.Name, e.Tag)
}
