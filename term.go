package espalier

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/search"
	"github.com/aretw0/espalier/pkg/strategy"
	"github.com/aretw0/espalier/pkg/term"
)

// Term is a handle on a term of one module.
//
// Rewriting operations replace the term the handle points at, and only once
// they have fully succeeded: on error the handle keeps its previous term.
// Other handles are never affected, since terms themselves are immutable.
// A Term is not safe for concurrent use; Copy it to share.
type Term struct {
	mod *Module
	id  term.ID
}

// Module returns the module the term belongs to.
func (t *Term) Module() *Module { return t.mod }

// ID returns the underlying term identifier.
func (t *Term) ID() term.ID { return t.id }

// String prints the term in prefix notation.
func (t *Term) String() string { return t.mod.def.Store.String(t.id) }

// Sort returns the name of the least sort of the term, or the kind in
// brackets when the term has no sort.
func (t *Term) Sort() string { return t.mod.def.Store.SortName(t.id) }

// IsVariable reports whether the term is a variable.
func (t *Term) IsVariable() bool { return t.mod.def.Store.IsVariable(t.id) }

// VarName returns the variable name, or "" if the term is not a variable.
func (t *Term) VarName() string { return t.mod.def.Store.VarName(t.id) }

// Symbol returns the name of the top symbol, or "" for a variable.
func (t *Term) Symbol() string {
	if sym := t.mod.def.Store.Symbol(t.id); sym != nil {
		return sym.Name
	}
	return ""
}

// Arguments returns handles on the arguments of the term. Arguments of
// associative symbols are flattened.
func (t *Term) Arguments() []*Term {
	args := t.mod.def.Store.Args(t.id)
	out := make([]*Term, len(args))
	for i, a := range args {
		out[i] = &Term{mod: t.mod, id: a}
	}
	return out
}

// Ground reports whether the term contains no variables.
func (t *Term) Ground() bool { return t.mod.def.Store.IsGround(t.id) }

// Leq reports whether the least sort of the term is below the named sort.
// A term that only has a kind is below no sort.
func (t *Term) Leq(sort string) (bool, error) {
	srt, ok := t.mod.def.Sig.Sort(sort)
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownSort, sort)
	}
	return t.mod.def.Store.HasSort(t.id, srt), nil
}

// Equal reports whether both handles denote the same term.
func (t *Term) Equal(other *Term) bool {
	return other != nil && t.mod == other.mod && t.id == other.id
}

// Copy returns an independent handle on the same term.
func (t *Term) Copy() *Term {
	return &Term{mod: t.mod, id: t.id}
}

func (t *Term) replace(id term.ID, count int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	t.id = id
	return count, nil
}

// Reduce rewrites the term to its normal form with the equations and returns
// the number of equation applications.
func (t *Term) Reduce(ctx context.Context) (int, error) {
	return t.replace(t.mod.eng.Reduce(ctx, t.id))
}

// Rewrite reduces the term, applies one rule step and reduces again.
// It returns 1 if a rule applied and 0 otherwise.
func (t *Term) Rewrite(ctx context.Context) (int, error) {
	return t.replace(t.mod.eng.Rewrite(ctx, t.id))
}

// FRewrite applies up to bound rule steps, taking rules in turn.
// A negative bound means no bound.
func (t *Term) FRewrite(ctx context.Context, bound int) (int, error) {
	return t.replace(t.mod.eng.FRewrite(ctx, t.id, bound))
}

// ERewrite rewrites until no rule applies and returns the handle together
// with the number of rule applications. Cancel ctx to stop a diverging run.
func (t *Term) ERewrite(ctx context.Context) (*Term, int, error) {
	n, err := t.replace(t.mod.eng.ERewrite(ctx, t.id, -1))
	if err != nil {
		return nil, 0, err
	}
	return t, n, nil
}

// ApplyLabel applies the first applicable rule labeled label anywhere in the
// term (or only at the top). It reports whether a rule applied.
func (t *Term) ApplyLabel(ctx context.Context, label string, top bool) (bool, error) {
	step, ok, err := t.mod.eng.ApplyLabel(ctx, t.id, label, top)
	if err != nil || !ok {
		return false, err
	}
	t.id = step.Result
	return true, nil
}

// SRewrite runs s on the term. The handle is left unchanged; results are new
// handles, enumerated lazily.
func (t *Term) SRewrite(s *module.Strategy) (*Solutions, error) {
	r, err := strategy.SRewrite(t.mod.eng, t.id, s)
	if err != nil {
		return nil, err
	}
	return &Solutions{mod: t.mod, r: r}, nil
}

// Match enumerates the matches of pattern against the term.
// With extension, the pattern may match a fragment of an A or AC argument list.
func (t *Term) Match(pattern *Term, extension bool) *match.Matches {
	var opts []match.Option
	if extension {
		opts = append(opts, match.WithExtension())
	}
	return t.mod.eng.Matcher().Match(pattern.id, t.id, opts...)
}

// MatchIf returns the matches of pattern against the term that also satisfy
// condition, a conjunction in the syntax of ParseCondition. A match that
// satisfies the condition in several ways is reported once per way, with the
// bindings introduced by matching fragments included.
func (t *Term) MatchIf(ctx context.Context, pattern *Term, condition string, extension bool) ([]match.Substitution, error) {
	conds, err := t.mod.ParseCondition(condition)
	if err != nil {
		return nil, err
	}
	matches := t.Match(pattern, extension)
	var out []match.Substitution
	for {
		sub, ok := matches.Next()
		if !ok {
			break
		}
		err := t.mod.eng.Solve(ctx, conds, sub, func(s match.Substitution) bool {
			out = append(out, s)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return out, matches.Err()
}

// Search starts a search from the term for states matching pattern.
// Nothing is explored until Next is called.
func (t *Term) Search(ctx context.Context, pattern *Term, opts ...search.Option) (*Search, error) {
	s, err := search.New(ctx, t.mod.eng, t.id, pattern.id, opts...)
	if err != nil {
		return nil, err
	}
	return &Search{mod: t.mod, s: s}, nil
}

// Solutions is the lazy result sequence of SRewrite.
type Solutions struct {
	mod *Module
	r   *strategy.Rewriter
}

// Next returns the next distinct result and the number of rewrites performed
// so far. It returns false once every branch has been explored.
func (s *Solutions) Next(ctx context.Context) (*Term, int, bool, error) {
	id, n, ok, err := s.r.Next(ctx)
	if err != nil || !ok {
		return nil, n, ok, err
	}
	return &Term{mod: s.mod, id: id}, n, true, nil
}

// Rewrites returns the number of rewrites performed so far.
func (s *Solutions) Rewrites() int { return s.r.Rewrites() }
