package espalier

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/search"
)

var _ ports.Evaluator = (*Engine)(nil)

// Evaluate runs one rewriting request given as text.
func (e *Engine) Evaluate(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResult, error) {
	mod, err := e.Load(ctx, req.Module)
	if err != nil {
		return nil, err
	}
	t, err := mod.ParseTerm(req.Term)
	if err != nil {
		return nil, err
	}
	bound := req.Bound
	if bound <= 0 {
		bound = -1
	}

	var steps int
	switch req.Mode {
	case domain.ModeReduce:
		steps, err = t.Reduce(ctx)
	case domain.ModeRewrite:
		steps, err = t.Rewrite(ctx)
	case domain.ModeFRewrite:
		steps, err = t.FRewrite(ctx, bound)
	case domain.ModeERewrite:
		steps, err = t.replace(mod.eng.ERewrite(ctx, t.id, bound))
	case domain.ModeSRewrite:
		return e.evaluateStrategy(ctx, mod, t, req.Strategy, bound)
	default:
		return nil, fmt.Errorf("unknown rewrite mode %q", req.Mode)
	}
	if err != nil {
		return nil, err
	}
	return &domain.RewriteResult{Term: t.String(), Sort: t.Sort(), Steps: steps}, nil
}

func (e *Engine) evaluateStrategy(ctx context.Context, mod *Module, t *Term, text string, limit int) (*domain.RewriteResult, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: srewrite needs a strategy", domain.ErrParse)
	}
	strat, err := mod.ParseStrategy(text)
	if err != nil {
		return nil, err
	}
	sols, err := t.SRewrite(strat)
	if err != nil {
		return nil, err
	}

	res := &domain.RewriteResult{}
	for limit < 0 || len(res.Solutions) < limit {
		u, _, ok, err := sols.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(res.Solutions) == 0 {
			res.Term, res.Sort = u.String(), u.Sort()
		}
		res.Solutions = append(res.Solutions, u.String())
	}
	res.Steps = sols.Rewrites()
	return res, nil
}

// StartSearch prepares a search described as text.
func (e *Engine) StartSearch(ctx context.Context, req domain.SearchRequest) (ports.SearchCursor, error) {
	mod, err := e.Load(ctx, req.Module)
	if err != nil {
		return nil, err
	}
	initial, err := mod.ParseTerm(req.Initial)
	if err != nil {
		return nil, err
	}
	pattern, err := mod.ParseTerm(req.Pattern)
	if err != nil {
		return nil, err
	}

	opts := []search.Option{search.WithType(req.Type)}
	if req.MaxDepth > 0 {
		opts = append(opts, search.WithMaxDepth(req.MaxDepth))
	}
	if req.Strategy != "" {
		strat, err := mod.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithStrategy(strat))
	}
	if req.Condition != "" {
		conds, err := mod.ParseCondition(req.Condition)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithCondition(conds...))
	}

	s, err := initial.Search(ctx, pattern, opts...)
	if err != nil {
		return nil, err
	}
	return &Cursor{s: s}, nil
}

// Cursor adapts a Search to ports.SearchCursor.
type Cursor struct {
	s *Search
}

// NewCursor wraps s.
func NewCursor(s *Search) *Cursor { return &Cursor{s: s} }

// Next reports up to n more solutions; n <= 0 runs the search to the end.
func (c *Cursor) Next(ctx context.Context, n int) ([]domain.SolutionRecord, bool, error) {
	var out []domain.SolutionRecord
	for n <= 0 || len(out) < n {
		res, ok, err := c.s.Next(ctx)
		if err != nil {
			return out, false, err
		}
		if !ok {
			return out, true, nil
		}
		rec := domain.SolutionRecord{StateNr: res.StateNr}
		if res.Subst.Len() > 0 {
			rec.Bindings = res.Subst.Map()
		}
		out = append(out, rec)
	}
	return out, c.s.Exhausted(), nil
}

// Snapshot exports the explored graph.
func (c *Cursor) Snapshot() *domain.Snapshot { return c.s.Snapshot() }

// Search returns the wrapped search.
func (c *Cursor) Search() *Search { return c.s }
