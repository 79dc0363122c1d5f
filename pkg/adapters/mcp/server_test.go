package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	loader, err := memory.NewFromDefinitions(testutils.NatDefinition(), testutils.ExampleDefinition())
	require.NoError(t, err)
	eng, err := espalier.New("", espalier.WithLoader(loader))
	require.NoError(t, err)
	return NewServer(eng)
}

func TestHandleEvaluate(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]interface{}
		want    domain.RewriteResult
		wantErr error
	}{
		{
			name: "Default mode reduces",
			args: map[string]interface{}{"module": "NAT", "term": "_*_(N, 0)"},
			want: domain.RewriteResult{Term: "0", Sort: "Zero", Steps: 1},
		},
		{
			name: "Bound as JSON number",
			args: map[string]interface{}{"module": "EXAMPLE", "term": "f(a, a)", "mode": "frewrite", "bound": float64(3)},
			want: domain.RewriteResult{Term: "f(a, c)", Sort: "Symbol", Steps: 3},
		},
		{
			name: "Strategy",
			args: map[string]interface{}{"module": "EXAMPLE", "term": "a", "mode": "srewrite", "strategy": "abc"},
			want: domain.RewriteResult{Term: "c", Sort: "Symbol", Steps: 2, Solutions: []string{"c"}},
		},
		{
			name:    "Unknown module",
			args:    map[string]interface{}{"module": "NOPE", "term": "a"},
			wantErr: domain.ErrModuleNotFound,
		},
		{
			name:    "Unknown symbol",
			args:    map[string]interface{}{"module": "EXAMPLE", "term": "g(a)"},
			wantErr: domain.ErrUnknownSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.handleEvaluate(ctx, mcp.CallToolRequest{}, tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleEvaluate_UnknownMode(t *testing.T) {
	s := newServer(t)
	_, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"module": "EXAMPLE", "term": "a", "mode": "sideways",
	})
	assert.Error(t, err)
}

func TestHandleSearch_Paging(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	first, err := s.handleSearch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"module":  "EXAMPLE",
		"initial": "f(a, a)",
		"pattern": "f(X, c)",
		"limit":   float64(1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)
	require.Len(t, first.Solutions, 1)
	assert.Equal(t, 5, first.Solutions[0].StateNr)
	assert.False(t, first.Done)

	rest, err := s.handleNext(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": first.SessionID,
	})
	require.NoError(t, err)
	assert.True(t, rest.Done)
	var nrs []int
	for _, sol := range rest.Solutions {
		nrs = append(nrs, sol.StateNr)
	}
	assert.Equal(t, []int{7, 8}, nrs)

	out, err := s.searchGraph(ctx, map[string]interface{}{"session_id": first.SessionID, "state": float64(7)})
	require.NoError(t, err)
	assert.Contains(t, out, "class s7 current;")

	_, err = s.searchGraph(ctx, map[string]interface{}{"session_id": first.SessionID, "state": float64(99)})
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	contents, err := s.readSession(ctx, sessionURIPrefix+first.SessionID)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text.Text), &snap))
	assert.Equal(t, first.SessionID, snap.SessionID)
	assert.Len(t, snap.States, 9)
}

func TestHandleSearch_TypeNames(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleSearch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"module":  "EXAMPLE",
		"initial": "f(a, a)",
		"pattern": "f(X, Y)",
		"type":    "ONE_STEP",
		"limit":   float64(0),
	})
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Len(t, res.Solutions, 2)

	_, err = s.handleSearch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"module":  "EXAMPLE",
		"initial": "a",
		"pattern": "X",
		"type":    "SIDEWAYS",
	})
	assert.Error(t, err)
}

func TestHandleNext_UnknownSession(t *testing.T) {
	s := newServer(t)
	_, err := s.handleNext(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
