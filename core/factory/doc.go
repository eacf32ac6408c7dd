// Package factory provides a small generic registry used to build pluggable
// modules, such as metrics sinks, from configuration. A module is described by
// a type string and a map of raw settings which the registered factory decodes
// into its own struct with Decode.
package factory
