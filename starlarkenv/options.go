package starlarkenv

import "github.com/starforge/starforge/dist"

// ContextOption configures an EnvironmentContext under construction.
type ContextOption func(*EnvironmentContext)

// WithHostTriple overrides the detected host platform triple.
func WithHostTriple(triple string) ContextOption {
	return func(c *EnvironmentContext) { c.hostTriple = triple }
}

// WithTargetTriple sets the platform being built for. Defaults to the host
// triple.
func WithTargetTriple(triple string) ContextOption {
	return func(c *EnvironmentContext) { c.targetTriple = triple }
}

// WithRelease marks the build as a release build.
func WithRelease(release bool) ContextOption {
	return func(c *EnvironmentContext) { c.release = release }
}

// WithOptLevel sets the optimization level configs see. Defaults to "0".
func WithOptLevel(level string) ContextOption {
	return func(c *EnvironmentContext) { c.optLevel = level }
}

// WithVerbose records that the caller asked for verbose output.
func WithVerbose(verbose bool) ContextOption {
	return func(c *EnvironmentContext) { c.verbose = verbose }
}

// WithDistributionCache shares an existing cache with this context instead
// of constructing one over the context's own distributions path. Callers
// evaluating several configs pass the same cache to each.
func WithDistributionCache(cache *dist.Cache) ContextOption {
	return func(c *EnvironmentContext) { c.cache = cache }
}

type sessionConfig struct {
	wantTargets     []string
	buildScriptMode bool
	interactive     bool
	extensions      []Extension
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

// WithWantTargets names the targets ResolveTargets resolves instead of the
// config's default target.
func WithWantTargets(names ...string) SessionOption {
	return func(c *sessionConfig) { c.wantTargets = append(c.wantTargets, names...) }
}

// WithBuildScriptMode prefers the config's registered build script target
// when no explicit targets are wanted.
func WithBuildScriptMode() SessionOption {
	return func(c *sessionConfig) { c.buildScriptMode = true }
}

// WithInteractive relaxes the dialect for REPL use: while loops, recursion
// and global reassignment become legal.
func WithInteractive() SessionOption {
	return func(c *sessionConfig) { c.interactive = true }
}

// WithExtensions adds environment extensions, populated in order during
// assembly.
func WithExtensions(exts ...Extension) SessionOption {
	return func(c *sessionConfig) { c.extensions = append(c.extensions, exts...) }
}
