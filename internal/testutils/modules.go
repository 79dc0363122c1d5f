package testutils

import (
	"testing"

	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/term"
	"github.com/stretchr/testify/require"
)

// NatDefinition is Peano arithmetic with associative-commutative _+_ and _*_.
func NatDefinition() module.Definition {
	ac := term.OpAttributes{Assoc: true, Comm: true}
	return module.Definition{
		Name:     "NAT",
		Sorts:    []string{"Zero", "NzNat", "Nat"},
		Subsorts: []string{"Zero NzNat < Nat"},
		Ops: []module.OpDef{
			{Name: "0", Range: "Zero"},
			{Name: "s", Domain: []string{"Nat"}, Range: "NzNat"},
			{Name: "_+_", Domain: []string{"Nat", "Nat"}, Range: "Nat", Attrs: ac},
			{Name: "_+_", Domain: []string{"NzNat", "Nat"}, Range: "NzNat", Attrs: ac},
			{Name: "_+_", Domain: []string{"Nat", "NzNat"}, Range: "NzNat", Attrs: ac},
			{Name: "_*_", Domain: []string{"Nat", "Nat"}, Range: "Nat", Attrs: ac},
			{Name: "_*_", Domain: []string{"NzNat", "NzNat"}, Range: "NzNat", Attrs: ac},
			{Name: "1", Range: "NzNat"},
			{Name: "2", Range: "NzNat"},
			{Name: "3", Range: "NzNat"},
			{Name: "4", Range: "NzNat"},
			{Name: "10", Range: "NzNat"},
		},
		Vars: map[string]string{"N": "Nat", "M": "Nat"},
		Equations: []module.RuleDef{
			{Label: "plus-zero", LHS: "_+_(N, 0)", RHS: "N"},
			{Label: "plus-succ", LHS: "_+_(N, s(M))", RHS: "s(_+_(N, M))"},
			{Label: "times-zero", LHS: "_*_(N, 0)", RHS: "0"},
			{Label: "times-succ", LHS: "_*_(N, s(M))", RHS: "_+_(_*_(N, M), N)"},
			{LHS: "1", RHS: "s(0)"},
			{LHS: "2", RHS: "s(1)"},
			{LHS: "3", RHS: "s(2)"},
			{LHS: "4", RHS: "s(3)"},
			{LHS: "10", RHS: "s(s(s(s(s(s(4))))))"},
		},
	}
}

// ExampleDefinition has three constants, a binary f and the rules
// ab (a => b), bc (b => c) and swap (f(X, Y) => f(Y, X)).
func ExampleDefinition() module.Definition {
	return module.Definition{
		Name:  "EXAMPLE",
		Sorts: []string{"Symbol"},
		Ops: []module.OpDef{
			{Name: "a", Range: "Symbol"},
			{Name: "b", Range: "Symbol"},
			{Name: "c", Range: "Symbol"},
			{Name: "f", Domain: []string{"Symbol", "Symbol"}, Range: "Symbol"},
		},
		Vars: map[string]string{"X": "Symbol", "Y": "Symbol"},
		Rules: []module.RuleDef{
			{Label: "ab", LHS: "a", RHS: "b"},
			{Label: "bc", LHS: "b", RHS: "c"},
			{Label: "swap", LHS: "f(X, Y)", RHS: "f(Y, X)"},
		},
		Strategies: []module.StrategyDef{
			{Name: "abc", Expr: "ab ; bc"},
			{Name: "loop", Expr: "swap ; loop"},
		},
	}
}

// BagDefinition is a multiset of items: juxtaposition is associative and
// commutative with identity empty. The rule take drops one item.
func BagDefinition() module.Definition {
	return module.Definition{
		Name:     "BAG",
		Sorts:    []string{"Item", "Bag"},
		Subsorts: []string{"Item < Bag"},
		Ops: []module.OpDef{
			{Name: "a", Range: "Item"},
			{Name: "b", Range: "Item"},
			{Name: "c", Range: "Item"},
			{Name: "empty", Range: "Bag"},
			{Name: "__", Domain: []string{"Bag", "Bag"}, Range: "Bag",
				Attrs: term.OpAttributes{Assoc: true, Comm: true, ID: "empty"}},
		},
		Vars: map[string]string{"I": "Item", "J": "Item", "B": "Bag"},
		Rules: []module.RuleDef{
			{Label: "take", LHS: "__(I, B)", RHS: "B"},
		},
	}
}

// MustCompile compiles def or fails the test.
func MustCompile(t testing.TB, def module.Definition) *module.Module {
	t.Helper()
	mod, err := module.Compile(def)
	require.NoError(t, err)
	return mod
}

// MustParse parses a term of mod or fails the test.
func MustParse(t testing.TB, mod *module.Module, text string) term.ID {
	t.Helper()
	id, err := mod.ParseTerm(text)
	require.NoError(t, err, text)
	return id
}
