/*
Package espalier is a term-rewriting engine with strategies and lazy state-space search.

Modules declare sorts, operators (optionally associative, commutative or with
an identity), equations, rules and named strategies. Terms are hash-consed in
a per-module store, so equality modulo the declared axioms is handle equality.

# Concept

Equations simplify terms (Reduce); rules describe transitions (Rewrite,
FRewrite, ERewrite). Strategies control which rules apply and where
(SRewrite), and searches explore every state reachable through rule or
strategy steps, breadth first, reporting the states that match a pattern
together with the path that reached them.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/espalier"
	)

	func main() {
		// Modules are read from ./modules (YAML, JSON or Markdown frontmatter).
		eng, err := espalier.New("./modules")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		mod, err := eng.Load(ctx, "NAT")
		if err != nil {
			log.Fatal(err)
		}

		t, err := mod.ParseTerm("_+_(2, 2)")
		if err != nil {
			log.Fatal(err)
		}
		if _, err := t.Reduce(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Println(t, t.Sort())
	}

Searches are pulled one solution at a time; nothing is explored beyond what
the caller asks for:

	s, err := start.Search(ctx, pattern, search.WithType(domain.AnySteps))
	for {
		res, ok, err := s.Next(ctx)
		if err != nil || !ok {
			break
		}
		path, _ := s.Path(res.StateNr)
		fmt.Println(res.StateNr, path)
	}
*/
package espalier
