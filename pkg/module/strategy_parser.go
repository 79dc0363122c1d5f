package module

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/term"
)

// strategyParser reads strategy expressions:
//
//	expr    := orelse [ '?' orelse ':' expr ]
//	orelse  := union { 'or-else' union }
//	union   := seq { '|' seq }
//	seq     := postfix { ';' postfix }
//	postfix := primary { '*' | '+' | '!' }
//	primary := '(' expr ')' | idle | fail | all | match T | amatch T
//	         | not(expr) | try(expr) | one(expr) | top(label) | label | name
type strategyParser struct {
	lx    *term.Lexer
	terms *term.Parser
	names map[string]bool
}

func parseStrategy(text string, terms *term.Parser, names map[string]bool) (*Strategy, error) {
	p := &strategyParser{lx: term.NewStrategyLexer(text), terms: terms, names: names}
	s, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.lx.Peek(); tok.Kind != term.TokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.Text)
	}
	return s, nil
}

func (p *strategyParser) errorf(tok term.Token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", domain.ErrParse, fmt.Sprintf(format, args...), tok.Pos)
}

func (p *strategyParser) isPunct(text string) bool {
	tok := p.lx.Peek()
	return tok.Kind == term.TokPunct && tok.Text == text
}

func (p *strategyParser) expect(kind term.TokenKind, text string) error {
	tok := p.lx.Next()
	if tok.Kind != kind {
		return p.errorf(tok, "expected %s, got %q", text, tok.Text)
	}
	return nil
}

func (p *strategyParser) expr() (*Strategy, error) {
	c, err := p.orElse()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return c, nil
	}
	p.lx.Next()
	then, err := p.orElse()
	if err != nil {
		return nil, err
	}
	if err := p.expect(term.TokColon, ":"); err != nil {
		return nil, err
	}
	els, err := p.expr()
	if err != nil {
		return nil, err
	}
	return Cond(c, then, els), nil
}

func (p *strategyParser) orElse() (*Strategy, error) {
	left, err := p.union()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.lx.Peek()
		if tok.Kind != term.TokName || tok.Text != "or-else" {
			return left, nil
		}
		p.lx.Next()
		right, err := p.union()
		if err != nil {
			return nil, err
		}
		left = OrElse(left, right)
	}
}

func (p *strategyParser) union() (*Strategy, error) {
	first, err := p.seq()
	if err != nil {
		return nil, err
	}
	alts := []*Strategy{first}
	for p.isPunct("|") {
		p.lx.Next()
		next, err := p.seq()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return Union(alts...), nil
}

func (p *strategyParser) seq() (*Strategy, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	var rest []*Strategy
	for p.isPunct(";") {
		p.lx.Next()
		next, err := p.postfix()
		if err != nil {
			return nil, err
		}
		rest = append(rest, next)
	}
	if len(rest) == 0 {
		return first, nil
	}
	return Seq(first, rest[0], rest[1:]...), nil
}

func (p *strategyParser) postfix() (*Strategy, error) {
	s, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("*"):
			s = Iterate(s)
		case p.isPunct("+"):
			s = Plus(s)
		case p.isPunct("!"):
			s = Normalize(s)
		default:
			return s, nil
		}
		p.lx.Next()
	}
}

func (p *strategyParser) primary() (*Strategy, error) {
	tok := p.lx.Next()
	switch tok.Kind {
	case term.TokLParen:
		s, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(term.TokRParen, ")"); err != nil {
			return nil, err
		}
		return s, nil
	case term.TokName:
	default:
		return nil, p.errorf(tok, "expected a strategy, got %q", tok.Text)
	}

	switch tok.Text {
	case "idle":
		return Idle(), nil
	case "fail":
		return Fail(), nil
	case "all":
		return All(), nil
	case "match", "amatch":
		pattern, err := p.terms.ParseFrom(p.lx)
		if err != nil {
			return nil, err
		}
		if tok.Text == "amatch" {
			return AMatch(pattern), nil
		}
		return Match(pattern), nil
	case "not", "try", "one":
		inner, err := p.parenthesized()
		if err != nil {
			return nil, err
		}
		switch tok.Text {
		case "not":
			return Not(inner), nil
		case "try":
			return Try(inner), nil
		}
		return One(inner), nil
	case "top":
		if err := p.expect(term.TokLParen, "("); err != nil {
			return nil, err
		}
		label := p.lx.Next()
		if label.Kind != term.TokName {
			return nil, p.errorf(label, "expected a rule label, got %q", label.Text)
		}
		if err := p.expect(term.TokRParen, ")"); err != nil {
			return nil, err
		}
		if label.Text == "all" {
			return ApplyTop(""), nil
		}
		return ApplyTop(label.Text), nil
	}
	if p.names[tok.Text] {
		return Call(tok.Text), nil
	}
	return Apply(tok.Text), nil
}

func (p *strategyParser) parenthesized() (*Strategy, error) {
	if err := p.expect(term.TokLParen, "("); err != nil {
		return nil, err
	}
	s, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(term.TokRParen, ")"); err != nil {
		return nil, err
	}
	return s, nil
}
