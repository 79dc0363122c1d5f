package rewrite

import (
	"context"
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/term"
)

// Step is one rule application.
type Step struct {
	// Result is the rewritten term, reduced by equations.
	Result   term.ID
	Rule     *module.Rule
	Position term.Position
	Subst    match.Substitution
}

// StepOption restricts the steps enumerated by Steps.
type StepOption func(*stepFilter)

type stepFilter struct {
	label   string
	rules   []*module.Rule
	topOnly bool
}

// WithLabel only uses rules labeled label.
func WithLabel(label string) StepOption {
	return func(f *stepFilter) {
		f.label = label
	}
}

// OnlyRules only uses the given rules.
func OnlyRules(rules ...*module.Rule) StepOption {
	return func(f *stepFilter) {
		f.rules = rules
	}
}

// AtTop only rewrites at the root.
func AtTop() StepOption {
	return func(f *stepFilter) {
		f.topOnly = true
	}
}

// Steps lazily enumerates the one-step rule rewrites of t. Positions are
// visited in pre-order; at each position rules are tried in declaration
// order and each rule's matches in matcher order. Rules at an associative
// position also match parts of it.
func (e *Engine) Steps(ctx context.Context, t term.ID, opts ...StepOption) *StepIterator {
	var f stepFilter
	for _, opt := range opts {
		opt(&f)
	}
	rules := f.rules
	if rules == nil {
		rules = e.mod.RulesByLabel(f.label)
	} else if f.label != "" {
		rules = slices.DeleteFunc(slices.Clone(rules), func(r *module.Rule) bool { return r.Label != f.label })
	}
	positions := []term.Position{{}}
	if !f.topOnly {
		positions = e.store.Positions(t)
	}
	return &StepIterator{e: e, ctx: ctx, subject: t, rules: rules, positions: positions}
}

// StepIterator is a lazy sequence of rule applications.
type StepIterator struct {
	e         *Engine
	ctx       context.Context
	subject   term.ID
	rules     []*module.Rule
	positions []term.Position

	pi, ri  int
	cur     *match.Matches
	pending []Step
	err     error
}

// Next returns the next step, or false when there are no more.
func (it *StepIterator) Next() (Step, bool) {
	for it.err == nil {
		if len(it.pending) > 0 {
			step := it.pending[0]
			it.pending = it.pending[1:]
			it.e.logger.Debug("rule applied", "label", step.Rule.Label, "position", step.Position.String())
			it.e.hooks.EmitRewrite(it.ctx, it.e.mod.Name, domain.EventRule, step.Rule.Label, step.Position.String())
			return step, true
		}
		if it.cur != nil {
			sub, ok := it.cur.Next()
			if ok {
				it.err = it.expand(sub)
				continue
			}
			it.err = it.cur.Err()
			it.cur = nil
			it.ri++
			continue
		}
		if it.pi >= len(it.positions) {
			return Step{}, false
		}
		if it.ri >= len(it.rules) {
			it.pi++
			it.ri = 0
			continue
		}
		if err := it.ctx.Err(); err != nil {
			it.err = err
			break
		}
		rule, pos := it.rules[it.ri], it.positions[it.pi]
		if rule.Top && len(pos) > 0 {
			it.ri++
			continue
		}
		sub, err := it.e.store.Subterm(it.subject, pos)
		if err != nil {
			it.err = err
			break
		}
		it.cur = it.e.matcher.Match(rule.LHS, sub, match.WithExtension())
	}
	return Step{}, false
}

// Err reports the error that ended the sequence, if any.
func (it *StepIterator) Err() error { return it.err }

// All drains the iterator.
func (it *StepIterator) All() ([]Step, error) {
	var out []Step
	for {
		step, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, step)
	}
}

// expand turns one left-hand side match into steps, one per condition solution.
func (it *StepIterator) expand(sub match.Substitution) error {
	e := it.e
	st := e.store
	rule, pos := it.rules[it.ri], it.positions[it.pi]
	ext := sub.Extension()
	r := e.newReducer(it.ctx)

	var buildErr error
	_, err := e.solve(it.ctx, rule.Conditions, sub, r.reduceFn, func(sol match.Substitution) bool {
		rhs, err := sol.Apply(rule.RHS)
		if err != nil {
			buildErr = err
			return false
		}
		replacement, err := ext.Rebuild(st, rhs)
		if err != nil {
			buildErr = err
			return false
		}
		next, err := st.Replace(it.subject, pos, replacement)
		if err != nil {
			buildErr = err
			return false
		}
		nf, _, err := e.Reduce(it.ctx, next)
		if err != nil {
			buildErr = err
			return false
		}
		it.pending = append(it.pending, Step{Result: nf, Rule: rule, Position: pos, Subst: sol})
		return true
	})
	if err != nil {
		return err
	}
	return buildErr
}
