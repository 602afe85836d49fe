// Package buildtargets is the config dialect for declaring and resolving
// build targets.
//
// A config script registers named targets, each backed by a function, and
// names what other targets it depends on:
//
//	def make_dist():
//	    return default_python_distribution()
//
//	def make_exe(dist):
//	    return dist.to_python_executable(name="myapp")
//
//	register_target("dist", make_dist)
//	register_target("exe", make_exe, depends=["dist"], default=True)
//
// Resolving a target calls its function with the resolved values of its
// dependencies as positional arguments. Results are memoized per session: a
// target function runs at most once no matter how many targets depend on it.
//
// The dialect keeps its state in a [Context] that travels through the
// environment as an opaque bridge handle, so independent sessions never
// share registries. Host metadata (target triples, release flag, output
// path) reaches dialect code through the [BuildContext] interface the
// embedding environment implements.
package buildtargets
