package module_test

import (
	"errors"
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Example(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())

	assert.Equal(t, "EXAMPLE", mod.Name)
	require.Len(t, mod.Rules, 3)
	assert.Empty(t, mod.Equations)
	assert.Equal(t, []string{"ab", "bc", "swap"}, mod.Labels())
	assert.Equal(t, []string{"abc", "loop"}, mod.StrategyNames())
	assert.Equal(t, "rl [swap] : f(X:Symbol, Y:Symbol) => f(Y:Symbol, X:Symbol)", mod.Rules[2].Format(mod.Store))

	swap := mod.RulesByLabel("swap")
	require.Len(t, swap, 1)
	assert.Equal(t, 2, swap[0].Index)
	assert.Len(t, mod.RulesByLabel(""), 3)
}

func TestCompile_Nat(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.NatDefinition())
	require.Len(t, mod.Equations, 9)

	st := mod.Store
	sum := testutils.MustParse(t, mod, "_+_(N, s(0))")
	assert.Equal(t, "NzNat", st.SortName(sum))

	nat, ok := mod.Sig.Sort("Nat")
	require.True(t, ok)
	zero, ok := mod.Sig.Sort("Zero")
	require.True(t, ok)
	assert.True(t, mod.Sig.Leq(zero, nat))
	assert.Equal(t, "[Nat]", zero.Kind().String())
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*module.Definition)
		want   error
	}{
		{"missing name", func(d *module.Definition) { d.Name = "" }, domain.ErrInvalidModule},
		{"unknown sort", func(d *module.Definition) {
			d.Ops = append(d.Ops, module.OpDef{Name: "g", Domain: []string{"Real"}, Range: "Symbol"})
		}, domain.ErrUnknownSort},
		{"bad lhs", func(d *module.Definition) {
			d.Rules = append(d.Rules, module.RuleDef{Label: "bad", LHS: "g(a)", RHS: "a"})
		}, domain.ErrUnknownSymbol},
		{"unbound rhs variable", func(d *module.Definition) {
			d.Rules = append(d.Rules, module.RuleDef{Label: "free", LHS: "a", RHS: "X"})
		}, domain.ErrInvalidModule},
		{"unknown strategy label", func(d *module.Definition) {
			d.Strategies = append(d.Strategies, module.StrategyDef{Name: "oops", Expr: "ab ; zz"})
		}, domain.ErrUnboundStrategyLabel},
		{"bad subsort", func(d *module.Definition) { d.Subsorts = []string{"Symbol"} }, domain.ErrInvalidModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testutils.ExampleDefinition()
			tt.mutate(&def)
			_, err := module.Compile(def)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrInvalidModule)
			assert.NotEmpty(t, module.DefinitionErrors(err))
		})
	}
}

func TestCompile_CollectsAllErrors(t *testing.T) {
	def := testutils.ExampleDefinition()
	def.Rules = append(def.Rules,
		module.RuleDef{Label: "x1", LHS: "g(a)", RHS: "a"},
		module.RuleDef{Label: "x2", LHS: "a", RHS: "h"},
	)
	_, err := module.Compile(def)
	require.Error(t, err)

	errs := module.DefinitionErrors(err)
	require.Len(t, errs, 2)
	var defErr *module.DefinitionError
	require.True(t, errors.As(errs[1], &defErr))
	assert.Equal(t, "rules", defErr.Section)
	assert.Equal(t, "x2", defErr.Name)
}

func TestCompile_Conditions(t *testing.T) {
	def := testutils.NatDefinition()
	def.Ops = append(def.Ops, module.OpDef{Name: "half", Domain: []string{"Nat"}, Range: "Nat"})
	def.Equations = append(def.Equations, module.RuleDef{
		Label: "half",
		LHS:   "half(N)",
		RHS:   "M",
		Conditions: []module.ConditionDef{
			{Type: "match", LHS: "_+_(M, M)", RHS: "N"},
			{Type: "sort", LHS: "M", Sort: "Nat"},
		},
	})
	mod := testutils.MustCompile(t, def)

	half := mod.Equations[len(mod.Equations)-1]
	require.Len(t, half.Conditions, 2)
	assert.Equal(t, module.CondMatch, half.Conditions[0].Kind)
	assert.Equal(t, module.CondSort, half.Conditions[1].Kind)
	assert.True(t, half.Conditional())

	def.Equations[len(def.Equations)-1].Conditions[0].Type = "rewrite"
	_, err := module.Compile(def)
	assert.ErrorIs(t, err, domain.ErrInvalidModule)
}

func TestParseStrategy(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())

	tests := []struct {
		text   string
		op     module.StrategyOp
		format string
	}{
		{"ab", module.OpApply, "ab"},
		{"abc", module.OpCall, "abc"},
		{"ab ; bc ; ab", module.OpSeq, "ab ; bc ; ab"},
		{"ab | bc", module.OpUnion, "ab | bc"},
		{"swap*", module.OpIterate, "swap *"},
		{"swap +", module.OpPlus, "swap +"},
		{"(ab | bc) !", module.OpNormalize, "(ab | bc) !"},
		{"match f(X, b)", module.OpTest, "match f(X:Symbol, b)"},
		{"amatch b", module.OpTest, "amatch b"},
		{"ab ? bc : idle", module.OpCond, "ab ? bc : idle"},
		{"ab or-else bc", module.OpOrElse, "ab or-else bc"},
		{"not(ab)", module.OpNot, "not(ab)"},
		{"try(ab ; bc)", module.OpTry, "try(ab ; bc)"},
		{"one(all)", module.OpOne, "one(all)"},
		{"top(swap)", module.OpApply, "top(swap)"},
		{"fail | idle", module.OpUnion, "fail | idle"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, err := mod.ParseStrategy(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.op, s.Op)
			assert.Equal(t, tt.format, s.Format(mod.Store))

			again, err := mod.ParseStrategy(s.Format(mod.Store))
			require.NoError(t, err)
			assert.Equal(t, tt.format, again.Format(mod.Store))
		})
	}
}

func TestParseStrategy_Errors(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	for _, text := range []string{"", "ab ;", "(ab", "ab ? bc", "not ab", "top()", "ab )"} {
		t.Run(text, func(t *testing.T) {
			_, err := mod.ParseStrategy(text)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestValidate(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())

	ok, err := mod.ParseStrategy("loop | abc | top(ab)")
	require.NoError(t, err)
	assert.NoError(t, mod.Validate(ok))

	bad, err := mod.ParseStrategy("swap ; nope")
	require.NoError(t, err)
	assert.ErrorIs(t, mod.Validate(bad), domain.ErrUnboundStrategyLabel)
	assert.ErrorIs(t, mod.Validate(module.Call("missing")), domain.ErrUnboundStrategyLabel)
}

func TestParseTerm_DeclaredVars(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	id := testutils.MustParse(t, mod, "f(X, a)")

	vars := mod.Store.Vars(id)
	require.Len(t, vars, 1)
	assert.Equal(t, "X", mod.Store.VarName(vars[0]))

	sym, ok := mod.Sig.Symbol("f", 2)
	require.True(t, ok)
	assert.Equal(t, term.Free, sym.Theory())
}

func TestDecode(t *testing.T) {
	src := `
name: EXAMPLE
sorts: [Symbol]
ops:
  - {name: a, range: Symbol}
  - {name: b, range: Symbol}
  - {name: f, domain: [Symbol, Symbol], range: Symbol, attrs: {comm: true}}
vars: {X: Symbol}
rules:
  - {label: ab, lhs: a, rhs: b}
  - label: fa
    lhs: "f(X, a)"
    rhs: "X"
    if:
      - {type: eq, lhs: X, rhs: b}
strategies:
  - {name: once, expr: "ab ; fa"}
`
	mod, err := module.Load([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "EXAMPLE", mod.Name)
	require.Len(t, mod.Rules, 2)
	assert.True(t, mod.Rules[1].Conditional())
	assert.Equal(t, []string{"once"}, mod.StrategyNames())

	sym, ok := mod.Sig.Symbol("f", 2)
	require.True(t, ok)
	assert.True(t, sym.IsComm())
}

func TestDecode_Errors(t *testing.T) {
	_, err := module.Decode([]byte("name: [unterminated"))
	assert.ErrorIs(t, err, domain.ErrInvalidModule)

	_, err = module.Decode([]byte("name: X\nsortz: [A]\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidModule)
}
