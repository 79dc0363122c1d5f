package search_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/search"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearch(t *testing.T, mod *module.Module, initial, pattern string, opts ...search.Option) *search.Search {
	t.Helper()
	eng := rewrite.New(mod)
	s, err := search.New(context.Background(), eng,
		testutils.MustParse(t, mod, initial), testutils.MustParse(t, mod, pattern), opts...)
	require.NoError(t, err)
	return s
}

// drain returns every result as "state:bindings".
func drain(t *testing.T, s *search.Search) []string {
	t.Helper()
	var out []string
	for {
		res, ok, err := s.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, fmt.Sprintf("%d:%v", res.StateNr, res.Subst.Map()))
	}
}

func TestSearch_AnySteps(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(X, c)")

	assert.Equal(t, []string{"5:map[X:a]", "7:map[X:b]", "8:map[X:c]"}, drain(t, s))
	assert.True(t, s.Exhausted())
	assert.Equal(t, 9, s.StateCount())
}

func TestSearch_Types(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())

	tests := []struct {
		name    string
		initial string
		pattern string
		opts    []search.Option
		want    []int
	}{
		{"any steps includes the initial state", "f(a, a)", "f(a, X)", nil, []int{0, 2, 5}},
		{"one step", "f(a, a)", "f(X, Y)", []search.Option{search.WithType(domain.OneStep)}, []int{1, 2}},
		{"at least one step", "f(a, a)", "f(b, X)", []search.Option{search.WithType(domain.AtLeastOneStep)}, []int{1, 4, 7}},
		{"normal form", "a", "X", []search.Option{search.WithType(domain.NormalForm)}, []int{2}},
		{"normal form with a loop", "f(a, a)", "f(X, Y)", []search.Option{search.WithType(domain.NormalForm)}, nil},
		{"depth bound", "f(a, a)", "f(X, Y)", []search.Option{search.WithMaxDepth(1)}, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSearch(t, mod, tt.initial, tt.pattern, tt.opts...)
			var got []int
			for {
				res, ok, err := s.Next(context.Background())
				require.NoError(t, err)
				if !ok {
					break
				}
				got = append(got, res.StateNr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_NoPathIsNotAnError(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "b", "a")

	for range 3 {
		_, ok, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, s.Exhausted())
	assert.Equal(t, 2, s.StateCount())
}

func TestSearch_SharedStateKeepsFirstParent(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(b, b)")

	res, ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, res.StateNr)

	// f(b, b) is reachable from f(b, a) and from f(a, b); the former was expanded first.
	parent, err := s.StateParent(4)
	require.NoError(t, err)
	assert.Equal(t, 1, parent)

	drain(t, s)
	count := 0
	for nr := range s.StateCount() {
		st, err := s.State(nr)
		require.NoError(t, err)
		if mod.Store.String(st.Term) == "f(b, b)" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSearch_ShortestPath(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(c, c)")

	res, ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	path, err := s.Path(res.StateNr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3, 6, 8}, path)

	labels, err := s.PathLabels(res.StateNr)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "bc", "ab", "bc"}, labels)

	rule, err := s.Rule(res.StateNr)
	require.NoError(t, err)
	assert.Equal(t, "bc", rule.Label)

	rule, err = s.Rule(0)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestSearch_PathReplaysTransitions(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	st := mod.Store
	s := newSearch(t, mod, "f(a, a)", "f(X, Y)")
	drain(t, s)

	for nr := 1; nr < s.StateCount(); nr++ {
		path, err := s.Path(nr)
		require.NoError(t, err)
		require.Equal(t, 0, path[0])

		cur, err := s.StateTerm(0)
		require.NoError(t, err)
		for _, p := range path[1:] {
			tr, err := s.Transition(p)
			require.NoError(t, err)
			rhs, err := tr.Subst.Apply(tr.Rule.RHS)
			require.NoError(t, err)
			cur, err = st.Replace(cur, tr.Position, rhs)
			require.NoError(t, err)
		}
		want, err := s.StateTerm(nr)
		require.NoError(t, err)
		assert.Equal(t, st.String(want), st.String(cur), "state %d", nr)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	run := func() []string {
		mod := testutils.MustCompile(t, testutils.ExampleDefinition())
		return drain(t, newSearch(t, mod, "f(a, a)", "f(X, Y)"))
	}
	first := run()
	require.Len(t, first, 9)
	for range 5 {
		if diff := cmp.Diff(first, run()); diff != "" {
			t.Fatalf("search order changed (-first +again):\n%s", diff)
		}
	}
}

func TestSearch_Condition(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	cond, err := mod.ParseCondition(module.ConditionDef{Type: "eq", LHS: "X", RHS: "Y"})
	require.NoError(t, err)

	s := newSearch(t, mod, "f(a, a)", "f(X, Y)", search.WithCondition(cond))
	assert.Equal(t, []string{"0:map[X:a Y:a]", "4:map[X:b Y:b]", "8:map[X:c Y:c]"}, drain(t, s))
}

func TestSearch_NextState(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(X, Y)")
	ctx := context.Background()

	// swap at the top leaves f(a, a) unchanged, then ab applies on each side.
	var next []int
	for i := 0; ; i++ {
		nr, err := s.NextState(ctx, 0, i)
		require.NoError(t, err)
		if nr < 0 {
			break
		}
		next = append(next, nr)
	}
	assert.Equal(t, []int{0, 1, 2}, next)

	// Reaching state 2 expands state 1 first, so numbering stays breadth first.
	nr, err := s.NextState(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, nr)

	_, err = s.NextState(ctx, 42, 0)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestSearch_Strategy(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	abc, err := mod.ParseStrategy("abc")
	require.NoError(t, err)

	s := newSearch(t, mod, "f(a, a)", "f(c, X)", search.WithStrategy(abc))
	res, ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, res.StateNr)
	assert.Equal(t, map[string]string{"X": "a"}, res.Subst.Map())

	cont, err := s.Continuation(0)
	require.NoError(t, err)
	assert.Equal(t, "abc", cont.Format(mod.Store))

	cont, err = s.Continuation(1)
	require.NoError(t, err)
	assert.Equal(t, "bc", cont.Format(mod.Store))

	cont, err = s.Continuation(3)
	require.NoError(t, err)
	assert.Equal(t, "idle", cont.Format(mod.Store))

	tr, err := s.Transition(3)
	require.NoError(t, err)
	assert.Equal(t, "bc", tr.Label(mod.Store))

	path, err := s.Path(3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, path)
}

func TestSearch_StrategyNormalForm(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	abc, err := mod.ParseStrategy("abc")
	require.NoError(t, err)

	s := newSearch(t, mod, "f(a, a)", "f(X, Y)", search.WithStrategy(abc), search.WithType(domain.NormalForm))
	assert.Equal(t, []string{"3:map[X:c Y:a]", "4:map[X:a Y:c]"}, drain(t, s))
}

func TestSearch_StrategyCycle(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	loop, err := mod.ParseStrategy("swap *")
	require.NoError(t, err)

	s := newSearch(t, mod, "f(a, b)", "f(X, Y)", search.WithStrategy(loop))
	assert.Len(t, drain(t, s), 2)
	assert.Equal(t, 2, s.StateCount())
}

func TestSearch_UnboundStrategyLabel(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	eng := rewrite.New(mod)
	_, err := search.New(context.Background(), eng,
		testutils.MustParse(t, mod, "a"), testutils.MustParse(t, mod, "X"),
		search.WithStrategy(module.Apply("missing")))
	assert.ErrorIs(t, err, domain.ErrUnboundStrategyLabel)
}

func TestSearch_Snapshot(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(c, c)")
	drain(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "EXAMPLE", snap.Module)
	assert.Equal(t, "f(a, a)", snap.Initial)
	assert.Equal(t, "f(c, c)", snap.Pattern)
	assert.Equal(t, domain.AnySteps, snap.SearchType)
	assert.True(t, snap.Exhausted)
	require.Len(t, snap.States, 9)
	require.Len(t, snap.Solutions, 1)
	assert.Equal(t, []int{0, 1, 3, 6, 8}, snap.Path(snap.Solutions[0].StateNr))
	assert.Equal(t, "ab", snap.States[1].Transition)
	assert.Empty(t, snap.States[0].Transition)
}

func TestSearch_Hooks(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	var discovered, solutions int
	hooks := domain.LifecycleHooks{
		OnStateDiscovered: func(context.Context, *domain.StateEvent) { discovered++ },
		OnSolution:        func(context.Context, *domain.StateEvent) { solutions++ },
	}
	eng := rewrite.New(mod, rewrite.WithLifecycleHooks(hooks))
	s, err := search.New(context.Background(), eng,
		testutils.MustParse(t, mod, "f(a, a)"), testutils.MustParse(t, mod, "f(X, c)"))
	require.NoError(t, err)
	drain(t, s)

	assert.Equal(t, 9, discovered)
	assert.Equal(t, 3, solutions)
}

func TestSearch_Cancelled(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	s := newSearch(t, mod, "f(a, a)", "f(c, c)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := s.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)

	// The search is still usable with a live context.
	res, ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, res.StateNr)
}

func TestSearch_IdentityTheoryReportsEachMatchOnce(t *testing.T) {
	mod := testutils.MustCompile(t, testutils.BagDefinition())
	s := newSearch(t, mod, "__(a, b, c)", "__(I, J)")

	got := drain(t, s)
	assert.True(t, s.Exhausted())
	assert.Len(t, got, 6, "two orderings in each of the three two-item bags")
	seen := make(map[string]bool, len(got))
	for _, r := range got {
		assert.False(t, seen[r], "reported twice: %s", r)
		seen[r] = true
	}
}
