package strategy_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mod *module.Module
	eng *rewrite.Engine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mod := testutils.MustCompile(t, testutils.ExampleDefinition())
	return fixture{mod: mod, eng: rewrite.New(mod)}
}

// results runs expr on subject and returns the printed solutions.
func (f fixture) results(t *testing.T, subject, expr string) []string {
	t.Helper()
	s, err := f.mod.ParseStrategy(expr)
	require.NoError(t, err, expr)
	r, err := strategy.SRewrite(f.eng, testutils.MustParse(t, f.mod, subject), s)
	require.NoError(t, err)
	ids, err := r.All(context.Background())
	require.NoError(t, err)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = f.mod.Store.String(id)
	}
	return out
}

func TestSRewrite_Combinators(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		subject string
		expr    string
		want    []string
	}{
		{"idle", "a", "idle", []string{"a"}},
		{"fail", "a", "fail", []string{}},
		{"rule", "a", "ab", []string{"b"}},
		{"rule does not apply", "c", "ab", []string{}},
		{"every position", "f(a, a)", "ab", []string{"f(b, a)", "f(a, b)"}},
		{"top only", "f(a, a)", "top(ab)", []string{}},
		{"sequence", "a", "ab ; bc", []string{"c"}},
		{"named strategy", "f(a, a)", "abc", []string{"f(c, a)", "f(a, c)"}},
		{"union order", "f(a, b)", "ab | bc", []string{"f(b, b)", "f(a, c)"}},
		{"union skips failures", "a", "bc | ab", []string{"b"}},
		{"iterate", "f(a, b)", "swap *", []string{"f(a, b)", "f(b, a)"}},
		{"plus", "f(a, b)", "swap +", []string{"f(b, a)", "f(a, b)"}},
		{"all rules", "a", "all *", []string{"a", "b", "c"}},
		{"match", "f(a, b)", "match f(X, Y) ; swap", []string{"f(b, a)"}},
		{"match fails", "a", "match f(X, Y)", []string{}},
		{"match is not anywhere", "f(a, b)", "match b", []string{}},
		{"amatch", "f(a, b)", "amatch b", []string{"f(a, b)"}},
		{"cond then", "a", "ab ? bc : swap", []string{"c"}},
		{"cond else", "f(c, b)", "ab ? bc : swap", []string{"f(b, c)"}},
		{"or-else first", "a", "ab or-else bc", []string{"b"}},
		{"or-else second", "b", "ab or-else bc", []string{"c"}},
		{"not fails", "a", "not(ab)", []string{}},
		{"not succeeds", "c", "not(ab)", []string{"c"}},
		{"try applies", "a", "try(ab)", []string{"b"}},
		{"try keeps", "c", "try(ab)", []string{"c"}},
		{"one", "f(a, a)", "one(ab)", []string{"f(b, a)"}},
		{"normalize", "f(a, a)", "ab !", []string{"f(b, b)"}},
		{"normalize union", "a", "(ab | bc) !", []string{"c"}},
		{"normalize without progress", "c", "ab !", []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.results(t, tt.subject, tt.expr)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSRewrite_RewriteCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.mod.ParseStrategy("swap *")
	require.NoError(t, err)
	r, err := strategy.SRewrite(f.eng, testutils.MustParse(t, f.mod, "f(a, b)"), s)
	require.NoError(t, err)

	got, count, ok, err := r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "f(a, b)", f.mod.Store.String(got))
	assert.Zero(t, count)

	got, count, ok, err = r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "f(b, a)", f.mod.Store.String(got))
	assert.Equal(t, 1, count)

	_, _, ok, err = r.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Rewrites())
}

func TestSRewrite_SequenceCount(t *testing.T) {
	f := newFixture(t)

	s, err := f.mod.ParseStrategy("abc")
	require.NoError(t, err)
	r, err := strategy.SRewrite(f.eng, testutils.MustParse(t, f.mod, "a"), s)
	require.NoError(t, err)

	got, count, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", f.mod.Store.String(got))
	assert.Equal(t, 2, count)
}

func TestSRewrite_Cycle(t *testing.T) {
	f := newFixture(t)

	// loop never finishes, so there are no results, but exploration stops
	// once both orientations have been seen.
	assert.Empty(t, f.results(t, "f(a, b)", "loop"))
}

func TestSRewrite_UnboundLabel(t *testing.T) {
	f := newFixture(t)
	subject := testutils.MustParse(t, f.mod, "a")

	_, err := strategy.SRewrite(f.eng, subject, module.Seq(module.Apply("ab"), module.Apply("nope")))
	require.ErrorIs(t, err, domain.ErrUnboundStrategyLabel)

	_, err = strategy.SRewrite(f.eng, subject, module.Call("missing"))
	require.ErrorIs(t, err, domain.ErrUnboundStrategyLabel)
}

func TestSRewrite_Cancelled(t *testing.T) {
	f := newFixture(t)
	s, err := f.mod.ParseStrategy("swap *")
	require.NoError(t, err)
	r, err := strategy.SRewrite(f.eng, testutils.MustParse(t, f.mod, "f(a, b)"), s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, ok, err := r.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMachine_Successors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := strategy.NewMachine(f.eng)

	s, err := f.mod.ParseStrategy("swap *")
	require.NoError(t, err)
	cfg, err := m.Start(testutils.MustParse(t, f.mod, "f(a, b)"), s)
	require.NoError(t, err)
	assert.Equal(t, s.Format(f.mod.Store), m.Continuation(cfg.Cont).Format(f.mod.Store))

	next, completes, err := m.Successors(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, completes)
	require.Len(t, next, 1)

	tr := next[0]
	assert.Equal(t, "f(b, a)", f.mod.Store.String(tr.To.Term))
	assert.Equal(t, "swap", tr.Label(f.mod.Store))
	assert.Equal(t, 1, tr.Rewrites)
	assert.Equal(t, "top", tr.Position.String())
	// What is left after one swap is the iteration itself.
	assert.Equal(t, cfg.Cont, tr.To.Cont)
}

func TestMachine_Continuation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := strategy.NewMachine(f.eng)

	s, err := f.mod.ParseStrategy("ab ; bc ; swap")
	require.NoError(t, err)
	cfg, err := m.Start(testutils.MustParse(t, f.mod, "f(a, c)"), s)
	require.NoError(t, err)

	next, completes, err := m.Successors(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, completes)
	require.Len(t, next, 1)

	rest, err := f.mod.ParseStrategy("bc ; swap")
	require.NoError(t, err)
	assert.Equal(t, rest.Format(f.mod.Store), m.Continuation(next[0].To.Cont).Format(f.mod.Store))
	assert.Len(t, m.Frames(next[0].To.Cont), 1)

	assert.Equal(t, "idle", m.Continuation(strategy.Done).Format(f.mod.Store))
	assert.Empty(t, m.Frames(strategy.Done))
}

func TestMachine_CompositeTransition(t *testing.T) {
	f := newFixture(t)
	m := strategy.NewMachine(f.eng)

	s, err := f.mod.ParseStrategy("one(abc)")
	require.NoError(t, err)
	cfg, err := m.Start(testutils.MustParse(t, f.mod, "f(a, a)"), s)
	require.NoError(t, err)

	next, _, err := m.Successors(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Nil(t, next[0].Rule)
	assert.Equal(t, 2, next[0].Rewrites)
	assert.Equal(t, "f(c, a)", f.mod.Store.String(next[0].To.Term))
	assert.Equal(t, strategy.Done, next[0].To.Cont)
}
