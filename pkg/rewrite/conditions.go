package rewrite

import (
	"context"

	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/term"
)

// Solve enumerates the extensions of sub satisfying conds, calling yield for
// each until it returns false. Condition instances are reduced before use.
func (e *Engine) Solve(ctx context.Context, conds []module.Condition, sub match.Substitution, yield func(match.Substitution) bool) error {
	_, err := e.solve(ctx, conds, sub, e.newReducer(ctx).reduceFn, yield)
	return err
}

// solve enumerates the extensions of sub that satisfy conds, left to right,
// calling yield for each. It stops as soon as yield returns false and reports
// whether enumeration should continue.
func (e *Engine) solve(ctx context.Context, conds []module.Condition, sub match.Substitution,
	reduce func(term.ID) (term.ID, error), yield func(match.Substitution) bool) (bool, error) {
	if len(conds) == 0 {
		return yield(sub), nil
	}
	c, rest := conds[0], conds[1:]
	st := e.store

	instance := func(t term.ID) (term.ID, error) {
		inst, err := sub.Apply(t)
		if err != nil {
			return term.None, err
		}
		return reduce(inst)
	}

	switch c.Kind {
	case module.CondEquation:
		l, err := instance(c.LHS)
		if err != nil {
			return false, err
		}
		r, err := instance(c.RHS)
		if err != nil {
			return false, err
		}
		if l != r {
			return true, nil
		}
		return e.solve(ctx, rest, sub, reduce, yield)

	case module.CondSort:
		l, err := instance(c.LHS)
		if err != nil {
			return false, err
		}
		if !st.HasSort(l, c.Sort) {
			return true, nil
		}
		return e.solve(ctx, rest, sub, reduce, yield)

	case module.CondMatch:
		subject, err := instance(c.RHS)
		if err != nil {
			return false, err
		}
		return e.solveMatches(ctx, c.LHS, subject, rest, sub, reduce, yield)

	case module.CondRewrite:
		start, err := instance(c.LHS)
		if err != nil {
			return false, err
		}
		// Breadth-first over rule steps, zero steps included.
		seen := map[term.ID]bool{start: true}
		queue := []term.ID{start}
		for explored := 0; len(queue) > 0 && explored < e.conditionBound; explored++ {
			u := queue[0]
			queue = queue[1:]
			cont, err := e.solveMatches(ctx, c.RHS, u, rest, sub, reduce, yield)
			if err != nil || !cont {
				return cont, err
			}
			steps := e.Steps(ctx, u)
			for {
				step, ok := steps.Next()
				if !ok {
					break
				}
				if !seen[step.Result] {
					seen[step.Result] = true
					queue = append(queue, step.Result)
				}
			}
			if err := steps.Err(); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return true, nil
}

func (e *Engine) solveMatches(ctx context.Context, pattern, subject term.ID, rest []module.Condition, sub match.Substitution,
	reduce func(term.ID) (term.ID, error), yield func(match.Substitution) bool) (bool, error) {
	it := e.matcher.Match(pattern, subject, match.WithBindings(sub))
	for {
		next, ok := it.Next()
		if !ok {
			break
		}
		cont, err := e.solve(ctx, rest, next, reduce, yield)
		if err != nil || !cont {
			return cont, err
		}
	}
	return true, it.Err()
}
