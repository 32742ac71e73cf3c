// Package cmd wires the idmapd command line interface: the load
// subcommand bulk-populates a cache from a mapping file, the perf
// subcommand benchmarks the cache in-process.
package cmd
