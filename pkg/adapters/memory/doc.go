// Package memory provides in-memory adapters: a module loader backed by a map
// and a snapshot store. Both are meant for tests and embedded use.
package memory
