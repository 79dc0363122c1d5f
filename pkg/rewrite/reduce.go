package rewrite

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/term"
)

// Reduce rewrites t with equations to normal form, innermost-leftmost:
// arguments are normalized before their parent. Equations marked top only apply
// at the root of t; owise equations only where no other equation applies.
// An application that yields its own subject is not taken.
//
// Termination is not checked. A non-terminating equation set runs until ctx is
// cancelled. The count is the number of equation applications.
func (e *Engine) Reduce(ctx context.Context, t term.ID) (term.ID, int, error) {
	r := e.newReducer(ctx)
	nf, err := r.normalize(t, term.Position{})
	if err != nil {
		return t, 0, err
	}
	return nf, r.count, nil
}

type reducer struct {
	e     *Engine
	ctx   context.Context
	memo  map[term.ID]term.ID
	count int
	ticks int
}

func (e *Engine) newReducer(ctx context.Context) *reducer {
	return &reducer{e: e, ctx: ctx, memo: make(map[term.ID]term.ID)}
}

// tick polls ctx every 64 calls.
func (r *reducer) tick() error {
	r.ticks++
	if r.ticks&63 == 0 {
		return r.ctx.Err()
	}
	return nil
}

// reduceFn normalizes a standalone term (a condition side) with the shared memo.
func (r *reducer) reduceFn(t term.ID) (term.ID, error) {
	return r.normalize(t, term.Position{})
}

func (r *reducer) normalize(t term.ID, pos term.Position) (term.ID, error) {
	st := r.e.store
	top := len(pos) == 0
	if !top {
		if nf, ok := r.memo[t]; ok {
			return nf, nil
		}
	}

	cur := t
	for !st.IsVariable(cur) {
		if err := r.tick(); err != nil {
			return term.None, err
		}
		args := st.Args(cur)
		var next []term.ID
		for i, a := range args {
			na, err := r.normalize(a, pos.Child(i))
			if err != nil {
				return term.None, err
			}
			if na != a && next == nil {
				next = make([]term.ID, len(args))
				copy(next, args[:i])
			}
			if next != nil {
				next[i] = na
			}
		}
		if next != nil {
			rebuilt, err := st.Intern(st.Symbol(cur), next...)
			if err != nil {
				return term.None, err
			}
			cur = rebuilt
			continue
		}

		res, ok, err := r.applyAtRoot(cur, pos)
		if err != nil {
			return term.None, err
		}
		if !ok {
			break
		}
		cur = res
	}

	// A top normal form is also a normal form below the root.
	r.memo[cur] = cur
	if !top {
		r.memo[t] = cur
	}
	return cur, nil
}

// applyAtRoot applies the first applicable equation at the root of u.
func (r *reducer) applyAtRoot(u term.ID, pos term.Position) (term.ID, bool, error) {
	e := r.e
	st := e.store
	sym := st.Symbol(u)
	for _, owise := range []bool{false, true} {
		for _, eq := range e.mod.Equations {
			if eq.Owise != owise || (eq.Top && len(pos) > 0) {
				continue
			}
			if lhsSym := st.Symbol(eq.LHS); lhsSym != sym {
				if _, ok := st.IdentityOf(lhsSym); !ok {
					continue
				}
			}

			it := e.matcher.Match(eq.LHS, u, match.WithExtension())
			for {
				sub, ok := it.Next()
				if !ok {
					break
				}
				res := term.None
				var applyErr error
				_, err := e.solve(r.ctx, eq.Conditions, sub, r.reduceFn, func(sol match.Substitution) bool {
					rhs, err := sol.Apply(eq.RHS)
					if err != nil {
						applyErr = err
						return false
					}
					res, applyErr = sub.Extension().Rebuild(st, rhs)
					return false
				})
				if err != nil {
					return term.None, false, err
				}
				if applyErr != nil {
					return term.None, false, applyErr
				}
				if res == term.None || res == u {
					continue
				}
				r.count++
				e.logger.Debug("equation applied", "label", eq.Label, "position", pos.String())
				e.hooks.EmitRewrite(r.ctx, e.mod.Name, domain.EventEquation, eq.Label, pos.String())
				return res, true, nil
			}
			if err := it.Err(); err != nil {
				return term.None, false, err
			}
		}
	}
	return term.None, false, nil
}
