package buildtargets

import (
	"fmt"

	"go.uber.org/zap"
)

// Keys understood by conforming BuildContext implementations.
const (
	KeyHostTriple   = "host_triple"
	KeyTargetTriple = "target_triple"
	KeyOptLevel     = "opt_level"
	KeyRelease      = "release"
	KeyOutputPath   = "output_path"
)

// BuildContext exposes build metadata to dialect code without exposing the
// embedding environment's concrete type. The keyspace is fixed per method;
// an unrecognized key fails with *UnknownKeyError.
type BuildContext interface {
	// Logger returns the logger dialect code writes through.
	Logger() *zap.Logger

	// GetStateString returns a string setting: KeyHostTriple,
	// KeyTargetTriple or KeyOptLevel.
	GetStateString(key string) (string, error)

	// GetStateBool returns a boolean setting: KeyRelease.
	GetStateBool(key string) (bool, error)

	// GetStatePath returns a filesystem path setting: KeyOutputPath.
	GetStatePath(key string) (string, error)
}

// UnknownKeyError reports a BuildContext key no accessor recognizes.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown build state key %q", e.Key)
}
