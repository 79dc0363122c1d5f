package strategy

import (
	"context"

	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/term"
	"github.com/hashicorp/go-set/v3"
)

// Rewriter lazily enumerates the results of a strategy, depth first.
type Rewriter struct {
	m        *Machine
	stack    []pendingConfig
	visited  *set.Set[Config]
	yielded  *set.Set[term.ID]
	rewrites int
	err      error
}

type pendingConfig struct {
	cfg      Config
	rewrites int
	// path counts the rewrites from the start configuration.
	path int
}

// SRewrite runs s on t with the rules of eng. Every strategy label is checked
// before anything is rewritten, so an unknown label fails here rather than
// halfway through the enumeration.
func SRewrite(eng *rewrite.Engine, t term.ID, s *module.Strategy) (*Rewriter, error) {
	m := NewMachine(eng)
	cfg, err := m.Start(t, s)
	if err != nil {
		return nil, err
	}
	return m.run(cfg), nil
}

func (m *Machine) run(cfg Config) *Rewriter {
	return &Rewriter{
		m:       m,
		stack:   []pendingConfig{{cfg: cfg}},
		visited: set.New[Config](64),
		yielded: set.New[term.ID](8),
	}
}

// Next returns the next distinct result together with the number of rewrites
// performed so far. It returns false once every branch has been explored.
func (r *Rewriter) Next(ctx context.Context) (term.ID, int, bool, error) {
	t, _, ok, err := r.next(ctx)
	return t, r.rewrites, ok, err
}

// next also returns the number of rewrites on the path to the result.
func (r *Rewriter) next(ctx context.Context) (term.ID, int, bool, error) {
	if r.err != nil {
		return term.None, 0, false, r.err
	}
	for len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		if !r.visited.Insert(top.cfg) {
			continue
		}
		r.rewrites += top.rewrites

		next, completes, err := r.m.Successors(ctx, top.cfg)
		if err != nil {
			r.err = err
			return term.None, 0, false, err
		}
		for i := len(next) - 1; i >= 0; i-- {
			tr := next[i]
			r.stack = append(r.stack, pendingConfig{cfg: tr.To, rewrites: tr.Rewrites, path: top.path + tr.Rewrites})
		}
		if completes && r.yielded.Insert(top.cfg.Term) {
			return top.cfg.Term, top.path, true, nil
		}
	}
	return term.None, 0, false, nil
}

// Rewrites returns the number of rewrites performed so far.
func (r *Rewriter) Rewrites() int { return r.rewrites }

// All drains the rewriter.
func (r *Rewriter) All(ctx context.Context) ([]term.ID, error) {
	var out []term.ID
	for {
		t, _, ok, err := r.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, t)
	}
}
