package rewrite_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_Arithmetic(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.NatDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	// 4 + (3 * (1 + 2)), built bottom-up from interned parts.
	st := mod.Store
	onePlusTwo, err := st.Apply("_+_", testutils.MustParse(t, mod, "1"), testutils.MustParse(t, mod, "2"))
	require.NoError(t, err)
	product, err := st.Apply("_*_", testutils.MustParse(t, mod, "3"), onePlusTwo)
	require.NoError(t, err)
	expr, err := st.Apply("_+_", testutils.MustParse(t, mod, "4"), product)
	require.NoError(t, err)

	nf, count, err := eng.Reduce(ctx, expr)
	require.NoError(t, err)
	assert.Positive(t, count)

	expected, _, err := eng.Reduce(ctx, testutils.MustParse(t, mod, "_+_(10, 3)"))
	require.NoError(t, err)
	assert.Equal(t, expected, nf, "got %s", st.String(nf))
	assert.Equal(t, "NzNat", st.SortName(nf))
}

func TestReduce_Idempotent(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.NatDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	for _, text := range []string{"_*_(2, 2, 2)", "_+_(N, 1, 3)", "_*_(N, 0)", "s(M)"} {
		t.Run(text, func(t *testing.T) {
			nf, _, err := eng.Reduce(ctx, testutils.MustParse(t, mod, text))
			require.NoError(t, err)
			again, count, err := eng.Reduce(ctx, nf)
			require.NoError(t, err)
			assert.Equal(t, nf, again)
			assert.Zero(t, count)
		})
	}
}

func parityDefinition() module.Definition {
	return module.Definition{
		Name:     "PARITY",
		Sorts:    []string{"Zero", "NzNat", "Nat", "Bool"},
		Subsorts: []string{"Zero NzNat < Nat"},
		Ops: []module.OpDef{
			{Name: "0", Range: "Zero"},
			{Name: "s", Domain: []string{"Nat"}, Range: "NzNat"},
			{Name: "true", Range: "Bool"},
			{Name: "false", Range: "Bool"},
			{Name: "even", Domain: []string{"Nat"}, Range: "Bool"},
			{Name: "nz", Domain: []string{"Nat"}, Range: "Bool"},
			{Name: "pred", Domain: []string{"Nat"}, Range: "Nat"},
			{Name: "h", Domain: []string{"Nat"}, Range: "Nat"},
		},
		Vars: map[string]string{"N": "Nat", "M": "Nat"},
		Equations: []module.RuleDef{
			{LHS: "even(0)", RHS: "true"},
			{LHS: "even(s(N))", RHS: "true", Owise: true},
			{LHS: "even(s(N))", RHS: "false", Conditions: []module.ConditionDef{{Type: "eq", LHS: "even(N)", RHS: "true"}}},
			{LHS: "nz(N)", RHS: "true", Conditions: []module.ConditionDef{{Type: "sort", LHS: "N", Sort: "NzNat"}}},
			{LHS: "pred(N)", RHS: "M", Conditions: []module.ConditionDef{{Type: "match", LHS: "s(M)", RHS: "N"}}},
			{LHS: "h(N)", RHS: "N", Top: true},
		},
	}
}

func TestReduce_Conditions(t *testing.T) {
	mod := testutils.MustCompile(t, parityDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	tests := []struct {
		in   string
		want string
	}{
		{"even(s(s(0)))", "true"},
		{"even(s(s(s(0))))", "false"},
		{"nz(s(0))", "true"},
		{"nz(0)", "nz(0)"},
		{"pred(s(s(0)))", "s(0)"},
		{"pred(0)", "pred(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			nf, _, err := eng.Reduce(ctx, testutils.MustParse(t, mod, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, mod.Store.String(nf))
		})
	}
}

func TestReduce_TopEquations(t *testing.T) {
	mod := testutils.MustCompile(t, parityDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	nf, _, err := eng.Reduce(ctx, testutils.MustParse(t, mod, "h(h(0))"))
	require.NoError(t, err)
	assert.Equal(t, "0", mod.Store.String(nf))

	nf, _, err = eng.Reduce(ctx, testutils.MustParse(t, mod, "s(h(0))"))
	require.NoError(t, err)
	assert.Equal(t, "s(h(0))", mod.Store.String(nf))
}

func TestReduce_Cancelled(t *testing.T) {
	def := testutils.ExampleDefinition()
	def.Equations = []module.RuleDef{{LHS: "a", RHS: "b"}, {LHS: "b", RHS: "a"}}
	mod := testutils.MustCompile(t, def)
	eng := rewrite.New(mod)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := testutils.MustParse(t, mod, "a")
	got, count, err := eng.Reduce(ctx, a)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, a, got)
	assert.Zero(t, count)
}

func TestRewrite(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	got, count, err := eng.Rewrite(ctx, testutils.MustParse(t, mod, "f(a, b)"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "f(b, a)", mod.Store.String(got))

	c := testutils.MustParse(t, mod, "c")
	got, count, err = eng.Rewrite(ctx, c)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, c, got)
}

func TestFRewrite_RoundRobin(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()
	start := testutils.MustParse(t, mod, "f(a, a)")

	got, count, err := eng.FRewrite(ctx, start, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "f(b, a)", mod.Store.String(got))

	got, count, err = eng.FRewrite(ctx, start, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, "f(a, c)", mod.Store.String(got))
}

func TestERewrite(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	got, count, err := eng.ERewrite(ctx, testutils.MustParse(t, mod, "a"), -1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "c", mod.Store.String(got))

	c := testutils.MustParse(t, mod, "c")
	got, count, err = eng.ERewrite(ctx, c, -1)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, c, got)

	// swap never stops; the limit does.
	_, count, err = eng.ERewrite(ctx, testutils.MustParse(t, mod, "f(c, c)"), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSteps_Order(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()

	steps, err := eng.Steps(ctx, testutils.MustParse(t, mod, "f(a, b)")).All()
	require.NoError(t, err)

	var got []string
	for _, s := range steps {
		got = append(got, s.Rule.Label+"@"+s.Position.String()+"="+mod.Store.String(s.Result))
	}
	assert.Equal(t, []string{"swap@top=f(b, a)", "ab@1=f(b, b)", "bc@2=f(a, c)"}, got)

	top, err := eng.Steps(ctx, testutils.MustParse(t, mod, "f(a, b)"), rewrite.AtTop(), rewrite.WithLabel("ab")).All()
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestSteps_RewriteCondition(t *testing.T) {
	def := testutils.ExampleDefinition()
	def.Ops = append(def.Ops, module.OpDef{Name: "g", Domain: []string{"Symbol"}, Range: "Symbol"})
	def.Rules = append(def.Rules, module.RuleDef{
		Label:      "reach",
		LHS:        "g(X)",
		RHS:        "c",
		Conditions: []module.ConditionDef{{Type: "rewrite", LHS: "X", RHS: "c"}},
	})
	mod := testutils.MustCompile(t, def)
	eng := rewrite.New(mod)

	steps, err := eng.Steps(context.Background(), testutils.MustParse(t, mod, "g(a)")).All()
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "reach", steps[0].Rule.Label)
	assert.Equal(t, "c", mod.Store.String(steps[0].Result))
	assert.Equal(t, "g(b)", mod.Store.String(steps[1].Result))
}

func TestSteps_ACExtension(t *testing.T) {
	def := testutils.NatDefinition()
	def.Rules = []module.RuleDef{{Label: "merge", LHS: "_+_(s(N), s(M))", RHS: "s(s(_+_(N, M)))"}}
	mod := testutils.MustCompile(t, def)
	eng := rewrite.New(mod)

	steps, err := eng.Steps(context.Background(), testutils.MustParse(t, mod, "_+_(N, s(0), s(s(0)))")).All()
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.Equal(t, "top", steps[0].Position.String())
	assert.Equal(t, "s(s(s(N:Nat)))", mod.Store.String(steps[0].Result))
}

func TestApplyLabel(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	ctx := context.Background()
	fab := testutils.MustParse(t, mod, "f(a, b)")

	_, _, err := eng.ApplyLabel(ctx, fab, "nope", false)
	assert.ErrorIs(t, err, domain.ErrUnknownRuleLabel)

	step, ok, err := eng.ApplyLabel(ctx, fab, "bc", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "f(a, c)", mod.Store.String(step.Result))

	_, ok, err = eng.ApplyLabel(ctx, fab, "bc", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHooks(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	var labels []string
	eng := rewrite.New(mod, rewrite.WithLifecycleHooks(domain.LifecycleHooks{
		OnRewrite: func(_ context.Context, ev *domain.RewriteEvent) {
			labels = append(labels, string(ev.Type)+":"+ev.Label)
		},
	}))

	_, _, err := eng.ERewrite(context.Background(), testutils.MustParse(t, mod, "a"), -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rule:ab", "rule:bc"}, labels)
}
