package starlarkenv

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestingTriple is the fixed platform triple test contexts use, so
// assertions do not depend on the machine running the tests.
const TestingTriple = "x86_64-unknown-linux-gnu"

// NewTestingContext builds a context for configPath whose log output is
// captured for assertions. Shared by tests across packages.
func NewTestingContext(configPath string) (*EnvironmentContext, *observer.ObservedLogs, error) {
	core, logs := observer.New(zapcore.DebugLevel)
	ec, err := NewEnvironmentContext(zap.New(core), configPath,
		WithHostTriple(TestingTriple),
		WithTargetTriple(TestingTriple),
	)
	if err != nil {
		return nil, nil, err
	}
	return ec, logs, nil
}
