// Package redis provides Redis-backed adapters: a snapshot store with TTL
// support, a distributed locker for the session manager, and a module loader
// reading definitions from a hash.
package redis
