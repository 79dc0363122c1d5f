// Package rewrite applies the equations and rules of a compiled module.
//
// Reduce normalizes with equations, innermost-leftmost. Rewrite, FRewrite and
// ERewrite take rule steps, each followed by reduction. Steps enumerates the
// one-step rule rewrites of a term lazily and is the successor function used by
// the strategy interpreter and the search engine.
//
// Terms are never changed in place: a step re-interns only the ancestors of the
// rewritten position and shares everything else.
package rewrite
