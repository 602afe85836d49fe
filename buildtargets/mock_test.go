package buildtargets

import (
	"go.uber.org/zap"
)

// mockBuildContext implements BuildContext for dialect tests without pulling
// in the real environment package.
type mockBuildContext struct {
	logger       *zap.Logger
	hostTriple   string
	targetTriple string
	optLevel     string
	release      bool
	outputPath   string
}

func newMockBuildContext() *mockBuildContext {
	return &mockBuildContext{
		logger:       zap.NewNop(),
		hostTriple:   "x86_64-unknown-linux-gnu",
		targetTriple: "x86_64-unknown-linux-gnu",
		optLevel:     "0",
		outputPath:   "/proj/build",
	}
}

func (m *mockBuildContext) Logger() *zap.Logger { return m.logger }

func (m *mockBuildContext) GetStateString(key string) (string, error) {
	switch key {
	case KeyHostTriple:
		return m.hostTriple, nil
	case KeyTargetTriple:
		return m.targetTriple, nil
	case KeyOptLevel:
		return m.optLevel, nil
	}
	return "", &UnknownKeyError{Key: key}
}

func (m *mockBuildContext) GetStateBool(key string) (bool, error) {
	if key == KeyRelease {
		return m.release, nil
	}
	return false, &UnknownKeyError{Key: key}
}

func (m *mockBuildContext) GetStatePath(key string) (string, error) {
	if key == KeyOutputPath {
		return m.outputPath, nil
	}
	return "", &UnknownKeyError{Key: key}
}
