package starlarkenv

import "errors"

// ErrSessionClosed is returned by session operations after Close.
var ErrSessionClosed = errors.New("session is closed")

// PathResolutionError reports a path that could not be resolved into the
// context's layout. Op names the operation in the manner of os.PathError.
type PathResolutionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathResolutionError) Unwrap() error { return e.Err }
