package term_test

import (
	"testing"

	"github.com/aretw0/espalier/pkg/term"
	"github.com/stretchr/testify/assert"
)

func lexAll(lx *term.Lexer) []term.Token {
	var out []term.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == term.TokEOF || tok.Kind == term.TokInvalid {
			return out
		}
	}
}

func TestLexer_Terms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []term.Token
	}{
		{
			name: "application",
			src:  "f(a, X:Nat)",
			want: []term.Token{
				{Kind: term.TokName, Text: "f", Pos: 0},
				{Kind: term.TokLParen, Text: "(", Pos: 1},
				{Kind: term.TokName, Text: "a", Pos: 2},
				{Kind: term.TokComma, Text: ",", Pos: 3},
				{Kind: term.TokName, Text: "X", Pos: 5},
				{Kind: term.TokColon, Text: ":", Pos: 6},
				{Kind: term.TokName, Text: "Nat", Pos: 7},
				{Kind: term.TokRParen, Text: ")", Pos: 10},
				{Kind: term.TokEOF, Pos: 11},
			},
		},
		{
			name: "operator names keep their symbols",
			src:  "  _+_(s(0),N)",
			want: []term.Token{
				{Kind: term.TokName, Text: "_+_", Pos: 2},
				{Kind: term.TokLParen, Text: "(", Pos: 5},
				{Kind: term.TokName, Text: "s", Pos: 6},
				{Kind: term.TokLParen, Text: "(", Pos: 7},
				{Kind: term.TokName, Text: "0", Pos: 8},
				{Kind: term.TokRParen, Text: ")", Pos: 9},
				{Kind: term.TokComma, Text: ",", Pos: 10},
				{Kind: term.TokName, Text: "N", Pos: 11},
				{Kind: term.TokRParen, Text: ")", Pos: 12},
				{Kind: term.TokEOF, Pos: 13},
			},
		},
		{
			name: "empty",
			src:  " \t",
			want: []term.Token{{Kind: term.TokEOF, Pos: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexAll(term.NewLexer(tt.src)))
		})
	}
}

func TestLexer_Strategies(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"swap*", []string{"swap", "*"}},
		{"ab ; bc", []string{"ab", ";", "bc"}},
		{"swap+ | idle", []string{"swap", "+", "|", "idle"}},
		{"norm!", []string{"norm", "!"}},
		{"a*b*", []string{"a*b", "*"}},
		{"top(swap)?", []string{"top", "(", "swap", ")", "?"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var got []string
			for _, tok := range lexAll(term.NewStrategyLexer(tt.src)) {
				if tok.Kind != term.TokEOF {
					got = append(got, tok.Text)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	lx := term.NewLexer("a b")
	assert.Equal(t, "a", lx.Peek().Text)
	assert.Equal(t, "a", lx.Peek().Text)
	assert.Equal(t, "a", lx.Next().Text)
	assert.Equal(t, "b", lx.Next().Text)
	assert.Equal(t, term.TokEOF, lx.Next().Kind)
	assert.Equal(t, term.TokEOF, lx.Next().Kind)
}
