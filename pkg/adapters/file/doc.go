// Package file provides filesystem adapters: a module loader reading YAML or
// JSON definitions from a directory, and a snapshot store writing one JSON
// file per session.
package file
