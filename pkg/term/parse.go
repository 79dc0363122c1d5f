package term

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Parser reads the canonical prefix notation printed by Store.String.
type Parser struct {
	store *Store
	vars  map[string]*Sort
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithVars declares variables that may appear without a sort annotation.
func WithVars(vars map[string]*Sort) ParserOption {
	return func(p *Parser) {
		p.vars = vars
	}
}

// NewParser creates a parser over store.
func NewParser(store *Store, opts ...ParserOption) *Parser {
	p := &Parser{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads exactly one term from text.
func (p *Parser) Parse(text string) (ID, error) {
	lx := NewLexer(text)
	t, err := p.ParseFrom(lx)
	if err != nil {
		return None, err
	}
	if tok := lx.Peek(); tok.Kind != TokEOF {
		return None, fmt.Errorf("%w: unexpected %q at offset %d", domain.ErrParse, tok.Text, tok.Pos)
	}
	return t, nil
}

// ParseFrom reads one term from a shared lexer, leaving the following tokens unread.
func (p *Parser) ParseFrom(lx *Lexer) (ID, error) {
	tok := lx.Next()
	if tok.Kind != TokName {
		return None, fmt.Errorf("%w: expected a term at offset %d, got %q", domain.ErrParse, tok.Pos, tok.Text)
	}
	name := tok.Text

	switch lx.Peek().Kind {
	case TokColon:
		lx.Next()
		sortTok := lx.Next()
		if sortTok.Kind != TokName {
			return None, fmt.Errorf("%w: expected a sort after %s: at offset %d", domain.ErrParse, name, sortTok.Pos)
		}
		srt, ok := p.store.sig.Sort(sortTok.Text)
		if !ok {
			return None, fmt.Errorf("%w: %s at offset %d", domain.ErrUnknownSort, sortTok.Text, sortTok.Pos)
		}
		return p.store.Variable(name, srt)

	case TokLParen:
		lx.Next()
		var args []ID
		for {
			arg, err := p.ParseFrom(lx)
			if err != nil {
				return None, err
			}
			args = append(args, arg)
			sep := lx.Next()
			if sep.Kind == TokRParen {
				break
			}
			if sep.Kind != TokComma {
				return None, fmt.Errorf("%w: expected , or ) at offset %d, got %q", domain.ErrParse, sep.Pos, sep.Text)
			}
		}
		sym, ok := p.store.sig.Lookup(name, len(args))
		if !ok {
			return None, fmt.Errorf("%w: %s/%d at offset %d", domain.ErrUnknownSymbol, name, len(args), tok.Pos)
		}
		return p.store.Intern(sym, args...)
	}

	if sym, ok := p.store.sig.Symbol(name, 0); ok {
		return p.store.Intern(sym)
	}
	if srt, ok := p.vars[name]; ok {
		return p.store.Variable(name, srt)
	}
	return None, fmt.Errorf("%w: %s at offset %d", domain.ErrUnknownSymbol, name, tok.Pos)
}
