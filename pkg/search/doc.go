// Package search explores the states reachable from a term and reports those
// matching a pattern.
//
// The graph is built lazily and breadth first. Each call to Search.Next does
// only the work needed to find one more solution; the explored states are kept
// so that later calls continue from the same frontier. Structurally equal
// states are merged and keep the first parent that reached them, so paths
// recovered with Search.Path are shortest paths.
//
// A plain search uses every rule of the module as a transition. A search with
// a strategy uses the steps of the strategy machine instead and merges states
// only when both the term and the remaining strategy agree.
package search
