package starlarkenv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/starforge/starforge/buildtargets"
	"github.com/starforge/starforge/dist"
)

// distributionsDirName is the subdirectory of the build path that holds
// resolved distributions.
const distributionsDirName = "python_distributions"

// EnvironmentContext is the mutable state one config evaluation runs
// against: where the config lives, where build output goes, what platform
// is being built for, and the distribution cache sessions share.
//
// A context is confined to its session's thread. The only mutation after
// construction is SetBuildPath, reached through the exclusive view of the
// context's bridge handle.
type EnvironmentContext struct {
	logger  *zap.Logger
	verbose bool

	configPath string
	cwd        string

	hostTriple   string
	targetTriple string
	release      bool
	optLevel     string

	buildPath               string
	pythonDistributionsPath string

	cache *dist.Cache
}

// NewEnvironmentContext derives the build layout from configPath: the
// context's working directory is the config's parent directory, resolved
// against the process's current directory if relative; the build path is a
// "build" directory under it, and resolved distributions live under that.
// Construction fails with *PathResolutionError when the layout cannot be
// derived.
func NewEnvironmentContext(logger *zap.Logger, configPath string, opts ...ContextOption) (*EnvironmentContext, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validatePath("resolve config path", configPath); err != nil {
		return nil, err
	}

	processDir, err := os.Getwd()
	if err != nil {
		return nil, &PathResolutionError{Op: "resolve working directory", Path: ".", Err: err}
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(processDir, configPath)
	}
	configPath = filepath.Clean(configPath)

	parent := filepath.Dir(configPath)
	if parent == configPath {
		return nil, &PathResolutionError{Op: "resolve config path", Path: configPath, Err: errors.New("path has no parent directory")}
	}

	c := &EnvironmentContext{
		logger:     logger.With(zap.String("config", configPath)),
		configPath: configPath,
		cwd:        parent,
		hostTriple: HostTriple(),
		optLevel:   "0",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.targetTriple == "" {
		c.targetTriple = c.hostTriple
	}

	c.buildPath = filepath.Join(c.cwd, "build")
	c.pythonDistributionsPath = filepath.Join(c.buildPath, distributionsDirName)
	if c.cache == nil {
		c.cache = dist.NewCache(c.pythonDistributionsPath, dist.WithLogger(c.logger))
	}
	return c, nil
}

// SetBuildPath points build output at path, resolving a relative path
// against the working directory. The distributions path moves along with
// it. The distribution cache does not: it keeps the storage directory it
// was constructed with, so already-resolved distributions stay valid.
func (c *EnvironmentContext) SetBuildPath(path string) error {
	if err := validatePath("set build path", path); err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.cwd, path)
	}
	path = filepath.Clean(path)

	c.buildPath = path
	c.pythonDistributionsPath = filepath.Join(path, distributionsDirName)
	c.logger.Debug("build path changed", zap.String("build_path", path))
	return nil
}

func (c *EnvironmentContext) Logger() *zap.Logger { return c.logger }
func (c *EnvironmentContext) Verbose() bool       { return c.verbose }

// ConfigPath returns the absolute path of the config file.
func (c *EnvironmentContext) ConfigPath() string { return c.configPath }

// Cwd returns the context's working directory: the config's parent
// directory, fixed at construction.
func (c *EnvironmentContext) Cwd() string { return c.cwd }

func (c *EnvironmentContext) HostTriple() string   { return c.hostTriple }
func (c *EnvironmentContext) TargetTriple() string { return c.targetTriple }
func (c *EnvironmentContext) Release() bool        { return c.release }
func (c *EnvironmentContext) OptLevel() string     { return c.optLevel }

// BuildPath returns where build output goes.
func (c *EnvironmentContext) BuildPath() string { return c.buildPath }

// PythonDistributionsPath returns where resolved distributions belong under
// the current build path.
func (c *EnvironmentContext) PythonDistributionsPath() string { return c.pythonDistributionsPath }

// DistributionCache returns the shared distribution cache.
func (c *EnvironmentContext) DistributionCache() *dist.Cache { return c.cache }

// GetStateString implements buildtargets.BuildContext.
func (c *EnvironmentContext) GetStateString(key string) (string, error) {
	switch key {
	case buildtargets.KeyHostTriple:
		return c.hostTriple, nil
	case buildtargets.KeyTargetTriple:
		return c.targetTriple, nil
	case buildtargets.KeyOptLevel:
		return c.optLevel, nil
	}
	return "", &buildtargets.UnknownKeyError{Key: key}
}

// GetStateBool implements buildtargets.BuildContext.
func (c *EnvironmentContext) GetStateBool(key string) (bool, error) {
	if key == buildtargets.KeyRelease {
		return c.release, nil
	}
	return false, &buildtargets.UnknownKeyError{Key: key}
}

// GetStatePath implements buildtargets.BuildContext. The output path tracks
// the current build path, including changes made by set_build_path.
func (c *EnvironmentContext) GetStatePath(key string) (string, error) {
	if key == buildtargets.KeyOutputPath {
		return c.buildPath, nil
	}
	return "", &buildtargets.UnknownKeyError{Key: key}
}

func validatePath(op, path string) error {
	if path == "" {
		return &PathResolutionError{Op: op, Path: path, Err: errors.New("path is empty")}
	}
	if strings.ContainsRune(path, 0) {
		return &PathResolutionError{Op: op, Path: path, Err: errors.New("path contains a NUL byte")}
	}
	return nil
}

// HostTriple maps the running platform onto the target triple vocabulary
// configs use.
func HostTriple() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}
	switch runtime.GOOS {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-" + runtime.GOOS
	}
}
