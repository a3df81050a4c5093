// Package cmd implements the command-line interface of yiiredis. It provides a
// hierarchical command structure for running store commands through the
// replica-aware router.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (get, set, del, has, exec), for
//     inspecting the routing (classify, topology) and for benchmarking (perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set with an environment variable YIIREDIS_<FLAG>
// (e.g. YIIREDIS_SECONDARIES=10.0.0.2,10.0.0.3), from .env / .env.local files,
// or from a config file passed with --config.
//
// See yiiredis -help for a list of all commands.
package cmd
