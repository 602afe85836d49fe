// Package starlarkenv evaluates build config files written in Starlark.
//
// # Overview
//
// A config runs inside a [Session]: an assembled environment of built-ins,
// context constants and the build targets dialect, all wired to one mutable
// [EnvironmentContext] that tracks where the config lives, where build
// output goes, and which platform is being built for.
//
// # Basic Usage
//
//	logger, _ := zap.NewProduction()
//	ec, err := starlarkenv.NewEnvironmentContext(logger, "./starforge.star")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := starlarkenv.EvaluateFile(ec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	resolved, err := session.ResolveTargets()
//
// # What configs see
//
// Every session predeclares the same names: the json and time value
// modules; register_target, resolve_target and resolve_targets from the
// build targets dialect; print and set_build_path; the CWD, CONFIG_PATH and
// BUILD_TARGET_TRIPLE constants; and CONTEXT, an opaque handle on the
// environment context. print writes warning-level log lines instead of
// touching stdout, so config output lands in the same stream as everything
// else.
//
// # Context passing
//
// Built-ins find the context through the thread's bridge attachment rather
// than a process-wide registry, so concurrent sessions are fully isolated.
// Mutating built-ins take the handle's exclusive view; see
// [github.com/starforge/starforge/bridge].
//
// # Extensions
//
// Packages can add their own types and functions to the environment by
// implementing [Extension]; see [github.com/starforge/starforge/buildtargets]
// for the dialect the environment always carries.
package starlarkenv
