// Package term implements the order-sorted term store.
//
// A Signature declares sorts, subsorts and operators (with optional assoc, comm
// and identity attributes). Once sealed, it backs a Store: a hash-consed arena
// where every term is kept in canonical form, flattened under associative
// symbols, stripped of identity elements and sorted under commutative ones.
// Equality modulo those axioms is therefore ID equality.
//
// Terms are printed and parsed in prefix notation, f(a, b), with variables
// written Name:Sort.
package term
