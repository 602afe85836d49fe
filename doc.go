// Package starforge evaluates Starlark build configuration files and
// resolves the build targets they register.
//
// # Overview
//
// A configuration file is an ordinary Starlark module evaluated against a
// predeclared environment: the build targets dialect (register_target,
// resolve_target, resolve_targets), the print and set_build_path built-ins,
// the CWD, CONFIG_PATH and BUILD_TARGET_TRIPLE constants, and CONTEXT, an
// opaque handle on the mutable state of the evaluation.
//
// # Basic Usage
//
//	logger, _ := zap.NewProduction()
//	ec, _ := starlarkenv.NewEnvironmentContext(logger, "./starforge.star")
//
//	session, err := starlarkenv.EvaluateFile(ec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	resolved, err := session.ResolveTargets()
//
// # Sharing expensive state
//
// Resolving a Python distribution is slow, so the distribution cache is the
// one piece of state built to outlive a session. Construct one dist.Cache
// and hand it to every context:
//
//	cache := dist.NewCache(storageDir)
//	ec, _ := starlarkenv.NewEnvironmentContext(logger, path,
//	    starlarkenv.WithDistributionCache(cache))
//
// See the [starlarkenv], [buildtargets], [bridge], and [dist] packages for
// detailed API documentation.
package starforge
