// Package catalog holds the immutable list of charging stations served during
// a session. Records are loaded once, from a YAML/JSON file or the built-in
// Bengaluru set, and are never mutated afterwards.
package catalog
