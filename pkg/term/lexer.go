package term

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind classifies lexer tokens.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokName
	TokLParen
	TokRParen
	TokComma
	TokColon
	// TokPunct is a strategy operator character: ; | ? * + !
	TokPunct
	// TokInvalid carries a lexing error in Text.
	TokInvalid
)

// Token is a lexeme with its byte offset in the source.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

var (
	termLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Space", Pattern: `\s+`},
		{Name: "Name", Pattern: `[^\s(),:]+`},
		{Name: "Punct", Pattern: `[(),:]`},
	})
	// A strategy name never ends in * + or !, so "swap*" reads as the label
	// swap followed by the iteration operator.
	strategyLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Space", Pattern: `\s+`},
		{Name: "Name", Pattern: `[^\s(),:;|?]*[^\s(),:;|?*+!]`},
		{Name: "Punct", Pattern: `[(),:;|?*+!]`},
	})
)

// Lexer splits term (and strategy) text into tokens.
type Lexer struct {
	lx    lexer.Lexer
	space lexer.TokenType
	name  lexer.TokenType
	next  *Token
	err   *Token
}

// NewLexer creates a lexer for term text.
func NewLexer(src string) *Lexer { return newLexer(termLexer, src) }

// NewStrategyLexer creates a lexer for strategy text.
func NewStrategyLexer(src string) *Lexer { return newLexer(strategyLexer, src) }

func newLexer(def *lexer.StatefulDefinition, src string) *Lexer {
	symbols := def.Symbols()
	l := &Lexer{space: symbols["Space"], name: symbols["Name"]}
	lx, err := def.LexString("", src)
	if err != nil {
		l.fail(err)
		return l
	}
	l.lx = lx
	return l
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if l.next == nil {
		tok := l.scan()
		l.next = &tok
	}
	return *l.next
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	tok := l.Peek()
	l.next = nil
	return tok
}

func (l *Lexer) fail(err error) Token {
	tok := Token{Kind: TokInvalid, Text: err.Error()}
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		tok.Text = lexErr.Msg
		tok.Pos = lexErr.Pos.Offset
	}
	l.err = &tok
	return tok
}

func (l *Lexer) scan() Token {
	if l.err != nil {
		return *l.err
	}
	for {
		tok, err := l.lx.Next()
		if err != nil {
			return l.fail(err)
		}
		pos := tok.Pos.Offset
		switch {
		case tok.EOF():
			return Token{Kind: TokEOF, Pos: pos}
		case tok.Type == l.space:
			continue
		case tok.Type == l.name:
			return Token{Kind: TokName, Text: tok.Value, Pos: pos}
		}
		kind := TokPunct
		switch tok.Value {
		case "(":
			kind = TokLParen
		case ")":
			kind = TokRParen
		case ",":
			kind = TokComma
		case ":":
			kind = TokColon
		}
		return Token{Kind: kind, Text: tok.Value, Pos: pos}
	}
}
