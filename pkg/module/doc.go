/*
Package module compiles declarative module definitions into the tables the
rewriting engine runs on: a sealed signature, its term store, equations,
rules and named strategies.

A definition is plain data and can be written in YAML:

	name: EXAMPLE
	sorts: [Symbol]
	ops:
	  - {name: a, range: Symbol}
	  - {name: b, range: Symbol}
	  - {name: f, domain: [Symbol, Symbol], range: Symbol}
	vars: {X: Symbol, Y: Symbol}
	rules:
	  - {label: ab, lhs: a, rhs: b}
	  - {label: swap, lhs: "f(X, Y)", rhs: "f(Y, X)"}
	strategies:
	  - {name: once, expr: "ab ; swap"}

Terms use prefix notation with Name:Sort variables; strategies use the
combinators ; | * + ! ? : or-else not try one top match amatch idle fail all.
*/
package module
