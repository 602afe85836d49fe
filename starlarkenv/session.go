package starlarkenv

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/starforge/starforge/bridge"
	"github.com/starforge/starforge/buildtargets"
)

// Session owns one config evaluation: an assembled environment, the thread
// it evaluates on, and the dialect context holding registered targets.
// Evaluation is serialized internally; everything else about the session
// follows the context's single-thread confinement.
type Session struct {
	ec  *EnvironmentContext
	bt  *buildtargets.Context
	env *Environment

	thread   *starlark.Thread
	fileOpts *syntax.FileOptions

	mu       sync.Mutex
	closed   bool
	globals  starlark.StringDict
	replDefs starlark.StringDict
}

// NewSession assembles an environment around ec. Assembly happens once,
// here; ExecFile and Eval only run scripts against it.
func NewSession(ec *EnvironmentContext, opts ...SessionOption) (*Session, error) {
	if ec == nil {
		return nil, errors.New("environment context must not be nil")
	}
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var btOpts []buildtargets.Option
	if len(cfg.wantTargets) > 0 {
		btOpts = append(btOpts, buildtargets.WithWantTargets(cfg.wantTargets...))
	}
	if cfg.buildScriptMode {
		btOpts = append(btOpts, buildtargets.WithBuildScriptMode())
	}
	bt := buildtargets.NewContext(ec.Logger(), btOpts...)
	bt.SetState(ec)

	env, err := NewEnvironment(ec, bt, cfg.extensions)
	if err != nil {
		return nil, fmt.Errorf("assemble environment: %w", err)
	}

	thread := &starlark.Thread{
		Name: "starforge:" + filepath.Base(ec.ConfigPath()),
		Print: func(_ *starlark.Thread, msg string) {
			ec.Logger().Warn(msg)
		},
	}
	bridge.Attach(thread, env.Attrs)

	fileOpts := &syntax.FileOptions{Set: true, TopLevelControl: true}
	if cfg.interactive {
		fileOpts = &syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
			Recursion:       true,
		}
	}

	return &Session{
		ec:       ec,
		bt:       bt,
		env:      env,
		thread:   thread,
		fileOpts: fileOpts,
		replDefs: make(starlark.StringDict),
	}, nil
}

// EvaluateFile assembles a session for ec, runs its config file, and
// returns the session ready for target resolution.
func EvaluateFile(ec *EnvironmentContext, opts ...SessionOption) (*Session, error) {
	s, err := NewSession(ec, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.ExecFile(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ExecFile evaluates the session's config file. The module globals the
// config defined become available through Globals.
func (s *Session) ExecFile() error {
	return s.execSource(s.ec.ConfigPath(), nil)
}

// ExecSource evaluates src as a whole config, with name standing in for the
// file name in errors.
func (s *Session) ExecSource(name, src string) error {
	return s.execSource(name, src)
}

func (s *Session) execSource(name string, src any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	globals, err := starlark.ExecFileOptions(s.fileOpts, s.thread, name, src, s.env.Predeclared)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", name, err)
	}
	s.globals = globals
	return nil
}

// Eval evaluates one interactive input. An expression's value comes back;
// statements bind names later inputs can use.
func (s *Session) Eval(input string) (starlark.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	env := s.replEnv()
	if _, err := syntax.ParseExpr("<stdin>", input, 0); err == nil {
		return starlark.EvalOptions(s.fileOpts, s.thread, "<stdin>", input, env)
	}

	globals, err := starlark.ExecFileOptions(s.fileOpts, s.thread, "<stdin>", input, env)
	if err != nil {
		return nil, err
	}
	for name, v := range globals {
		s.replDefs[name] = v
	}
	return starlark.None, nil
}

// replEnv layers interactive definitions over the predeclared names.
func (s *Session) replEnv() starlark.StringDict {
	if len(s.replDefs) == 0 {
		return s.env.Predeclared
	}
	env := make(starlark.StringDict, len(s.env.Predeclared)+len(s.replDefs))
	for k, v := range s.env.Predeclared {
		env[k] = v
	}
	for k, v := range s.replDefs {
		env[k] = v
	}
	return env
}

// ResolveTargets resolves the targets the session was asked for, or the
// config's default target.
func (s *Session) ResolveTargets() ([]buildtargets.ResolvedTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.bt.ResolveWanted(s.thread)
}

// Globals returns the module globals the config defined, nil before
// ExecFile.
func (s *Session) Globals() starlark.StringDict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globals
}

// Context returns the environment context the session evaluates against.
func (s *Session) Context() *EnvironmentContext { return s.ec }

// Targets returns the dialect context holding registered targets.
func (s *Session) Targets() *buildtargets.Context { return s.bt }

// Close marks the session done. Further evaluation fails with
// ErrSessionClosed. Values already handed out stay valid.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
