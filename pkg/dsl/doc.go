/*
Package dsl provides a Go DSL for constructing espalier modules programmatically.

It builds a module.Definition with a fluent API instead of YAML or JSON files,
which suits generated modules, unit tests and IDE completion.

Example usage:

	b := dsl.New("EXAMPLE").Sorts("Symbol")
	b.Op("a").Range("Symbol")
	b.Op("b").Range("Symbol")
	b.Op("f").Domain("Symbol", "Symbol").Range("Symbol")
	b.Var("Symbol", "X", "Y")
	b.Rule("ab").Rewrites("a", "b")
	b.Rule("swap").Rewrites("f(X, Y)", "f(Y, X)")
	b.Strategy("once", "ab")

	// The loader can be passed to espalier.New(...)
	loader, err := b.Build()
*/
package dsl
