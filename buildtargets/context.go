package buildtargets

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.starlark.net/starlark"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Target is one registered buildable unit.
type Target struct {
	Name     string
	Callable starlark.Callable
	Depends  []string

	// Default marks the target to resolve when the caller names none.
	Default bool

	// DefaultBuildScript marks the target to resolve in build script mode.
	DefaultBuildScript bool
}

// Context tracks the targets a config registers and what they resolved to.
//
// A Context belongs to one evaluation session and is confined to that
// session's thread, so methods do not lock.
type Context struct {
	logger *zap.Logger
	state  BuildContext

	targets map[string]*Target
	order   []string

	defaultTarget            string
	defaultBuildScriptTarget string

	wantTargets     []string
	buildScriptMode bool

	resolved  map[string]starlark.Value
	resolving map[string]bool
}

// Option configures a Context.
type Option func(*Context)

// WithWantTargets names the targets ResolveWanted resolves instead of the
// default one.
func WithWantTargets(names ...string) Option {
	return func(c *Context) { c.wantTargets = append(c.wantTargets, names...) }
}

// WithBuildScriptMode prefers the registered build script target when no
// explicit targets are wanted.
func WithBuildScriptMode() Option {
	return func(c *Context) { c.buildScriptMode = true }
}

func NewContext(logger *zap.Logger, opts ...Option) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Context{
		logger:    logger,
		targets:   make(map[string]*Target),
		resolved:  make(map[string]starlark.Value),
		resolving: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetState injects the build metadata accessor. The embedding environment
// wires this before any script runs.
func (c *Context) SetState(state BuildContext) {
	c.state = state
}

// RegisterTarget records a target. Registering a name again replaces the
// earlier registration. The first registered target becomes the default
// unless a later registration claims it explicitly.
func (c *Context) RegisterTarget(t Target) error {
	if t.Name == "" {
		return errors.New("target name must not be empty")
	}
	if t.Callable == nil {
		return fmt.Errorf("target %q: callable must not be nil", t.Name)
	}
	if _, exists := c.targets[t.Name]; !exists {
		c.order = append(c.order, t.Name)
	}
	c.targets[t.Name] = &t
	if t.Default || c.defaultTarget == "" {
		c.defaultTarget = t.Name
	}
	if t.DefaultBuildScript {
		c.defaultBuildScriptTarget = t.Name
	}
	c.logger.Debug("registered target",
		zap.String("target", t.Name),
		zap.Strings("depends", t.Depends),
		zap.Bool("default", t.Default))
	return nil
}

// TargetNames returns registered target names in registration order.
func (c *Context) TargetNames() []string {
	return append([]string(nil), c.order...)
}

func (c *Context) HasTarget(name string) bool {
	_, ok := c.targets[name]
	return ok
}

// DefaultTarget returns the target ResolveWanted falls back to, or "" when
// nothing is registered.
func (c *Context) DefaultTarget() string { return c.defaultTarget }

// ResolvedValue returns what name resolved to, if it has resolved already.
func (c *Context) ResolvedValue(name string) (starlark.Value, bool) {
	v, ok := c.resolved[name]
	return v, ok
}

// ResolveTarget resolves one target: dependencies first, then the target's
// function with the dependency values as positional arguments. Results are
// memoized, so a target function runs at most once per session.
func (c *Context) ResolveTarget(thread *starlark.Thread, name string) (starlark.Value, error) {
	if v, ok := c.resolved[name]; ok {
		return v, nil
	}
	t, ok := c.targets[name]
	if !ok {
		return nil, fmt.Errorf("target %q is not registered", name)
	}
	if c.resolving[name] {
		return nil, fmt.Errorf("dependency cycle while resolving target %q", name)
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)

	args := make(starlark.Tuple, 0, len(t.Depends))
	for _, dep := range t.Depends {
		v, err := c.ResolveTarget(thread, dep)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", name, err)
		}
		args = append(args, v)
	}

	c.logger.Info("resolving target", c.resolveFields(name)...)
	v, err := starlark.Call(thread, t.Callable, args, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving target %q: %w", name, err)
	}
	c.resolved[name] = v
	return v, nil
}

func (c *Context) resolveFields(name string) []zap.Field {
	fields := []zap.Field{zap.String("target", name)}
	if c.state == nil {
		return fields
	}
	if triple, err := c.state.GetStateString(KeyTargetTriple); err == nil {
		fields = append(fields, zap.String("target_triple", triple))
	}
	if release, err := c.state.GetStateBool(KeyRelease); err == nil {
		fields = append(fields, zap.Bool("release", release))
	}
	return fields
}

// ResolvedTarget pairs a resolved target with where its build output belongs.
type ResolvedTarget struct {
	Name      string
	Value     starlark.Value
	OutputDir string
}

// ResolveWanted resolves the wanted target set: explicitly wanted targets if
// any, else the build script target in build script mode, else the default
// target. A failed target does not stop the rest; all failures come back
// joined.
func (c *Context) ResolveWanted(thread *starlark.Thread) ([]ResolvedTarget, error) {
	wanted := c.wantedTargets()
	if len(wanted) == 0 {
		return nil, errors.New("no targets registered")
	}

	var (
		out  []ResolvedTarget
		errs error
	)
	for _, name := range wanted {
		v, err := c.ResolveTarget(thread, name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rt := ResolvedTarget{Name: name, Value: v}
		if c.state != nil {
			if dir, err := c.state.GetStatePath(KeyOutputPath); err == nil {
				rt.OutputDir = filepath.Join(dir, name)
			}
		}
		out = append(out, rt)
	}
	return out, errs
}

func (c *Context) wantedTargets() []string {
	if len(c.wantTargets) > 0 {
		return c.wantTargets
	}
	if c.buildScriptMode && c.defaultBuildScriptTarget != "" {
		return []string{c.defaultBuildScriptTarget}
	}
	if c.defaultTarget != "" {
		return []string{c.defaultTarget}
	}
	return nil
}
