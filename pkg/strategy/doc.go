// Package strategy interprets strategy expressions.
//
// Execution is a machine over configurations (term, continuation). The
// continuation is an immutable stack of strategies still to run, hash-consed
// so that configurations can be deduplicated and the residual strategy of any
// configuration can be read back as an expression. The machine never recurses
// through rewriting: Successors resolves control and returns the rule
// applications that are enabled, and callers decide how to explore them.
// SRewrite explores depth first; the search package explores breadth first.
package strategy
