package espalier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
)

func TestEngine_Evaluate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.RewriteRequest
		want domain.RewriteResult
	}{
		{
			name: "reduce",
			req:  domain.RewriteRequest{Module: "NAT", Term: "_*_(N, 0)", Mode: domain.ModeReduce},
			want: domain.RewriteResult{Term: "0", Sort: "Zero", Steps: 1},
		},
		{
			name: "rewrite",
			req:  domain.RewriteRequest{Module: "EXAMPLE", Term: "f(a, b)", Mode: domain.ModeRewrite},
			want: domain.RewriteResult{Term: "f(b, a)", Sort: "Symbol", Steps: 1},
		},
		{
			name: "frewrite",
			req:  domain.RewriteRequest{Module: "EXAMPLE", Term: "f(a, a)", Mode: domain.ModeFRewrite, Bound: 3},
			want: domain.RewriteResult{Term: "f(a, c)", Sort: "Symbol", Steps: 3},
		},
		{
			name: "erewrite",
			req:  domain.RewriteRequest{Module: "EXAMPLE", Term: "a", Mode: domain.ModeERewrite},
			want: domain.RewriteResult{Term: "c", Sort: "Symbol", Steps: 2},
		},
		{
			name: "srewrite",
			req:  domain.RewriteRequest{Module: "EXAMPLE", Term: "f(a, b)", Mode: domain.ModeSRewrite, Strategy: "swap *"},
			want: domain.RewriteResult{Term: "f(a, b)", Sort: "Symbol", Steps: 1, Solutions: []string{"f(a, b)", "f(b, a)"}},
		},
		{
			name: "srewrite bounded",
			req:  domain.RewriteRequest{Module: "EXAMPLE", Term: "a", Mode: domain.ModeSRewrite, Strategy: "abc", Bound: 1},
			want: domain.RewriteResult{Term: "c", Sort: "Symbol", Steps: 2, Solutions: []string{"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.Evaluate(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEngine_EvaluateErrors(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.Evaluate(ctx, domain.RewriteRequest{Module: "NOPE", Term: "a", Mode: domain.ModeReduce})
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)

	_, err = eng.Evaluate(ctx, domain.RewriteRequest{Module: "EXAMPLE", Term: "f(a", Mode: domain.ModeReduce})
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = eng.Evaluate(ctx, domain.RewriteRequest{Module: "EXAMPLE", Term: "a", Mode: domain.ModeSRewrite})
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = eng.Evaluate(ctx, domain.RewriteRequest{Module: "EXAMPLE", Term: "a", Mode: domain.ModeSRewrite, Strategy: "zz"})
	assert.ErrorIs(t, err, domain.ErrUnboundStrategyLabel)
}

func TestEngine_StartSearch(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	cursor, err := eng.StartSearch(ctx, domain.SearchRequest{
		Module:  "EXAMPLE",
		Initial: "f(a, a)",
		Pattern: "f(X, c)",
		Type:    domain.AnySteps,
	})
	require.NoError(t, err)

	found, done, err := cursor.Next(ctx, 2)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []domain.SolutionRecord{
		{StateNr: 5, Bindings: map[string]string{"X": "a"}},
		{StateNr: 7, Bindings: map[string]string{"X": "b"}},
	}, found)

	found, done, err = cursor.Next(ctx, 0)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, found, 1)

	snap := cursor.Snapshot()
	assert.Equal(t, "EXAMPLE", snap.Module)
	assert.Len(t, snap.States, 9)
	assert.Len(t, snap.Solutions, 3)
}

func TestEngine_StartSearchWithCondition(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	cursor, err := eng.StartSearch(ctx, domain.SearchRequest{
		Module:    "EXAMPLE",
		Initial:   "f(a, a)",
		Pattern:   "f(X, Y)",
		Type:      domain.AnySteps,
		Condition: "X = Y",
	})
	require.NoError(t, err)

	found, _, err := cursor.Next(ctx, 0)
	require.NoError(t, err)
	var states []int
	for _, rec := range found {
		states = append(states, rec.StateNr)
	}
	assert.Equal(t, []int{0, 4, 8}, states)

	_, err = eng.StartSearch(ctx, domain.SearchRequest{
		Module:    "EXAMPLE",
		Initial:   "a",
		Pattern:   "X",
		Condition: "X",
	})
	assert.ErrorIs(t, err, domain.ErrParse)
}
