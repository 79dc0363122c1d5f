package espalier

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/search"
	"github.com/aretw0/espalier/pkg/strategy"
)

// Search is a lazy search over the states reachable from a term.
// It remembers the last reported result for StateNr and Substitution.
type Search struct {
	mod  *Module
	s    *search.Search
	last search.Result
	has  bool
}

// Next explores until the next matching state and reports it.
// It returns false once the reachable states are exhausted.
func (s *Search) Next(ctx context.Context) (search.Result, bool, error) {
	res, ok, err := s.s.Next(ctx)
	if err != nil || !ok {
		return res, ok, err
	}
	s.last, s.has = res, true
	return res, true, nil
}

// StateNr returns the state of the last reported result, or -1 before the first.
func (s *Search) StateNr() int {
	if !s.has {
		return domain.NoParent
	}
	return s.last.StateNr
}

// Substitution returns the match of the last reported result.
func (s *Search) Substitution() match.Substitution {
	return s.last.Subst
}

// StateTerm returns a new handle on the term of state nr.
func (s *Search) StateTerm(nr int) (*Term, error) {
	id, err := s.s.StateTerm(nr)
	if err != nil {
		return nil, err
	}
	return &Term{mod: s.mod, id: id}, nil
}

// StateParent returns the parent of state nr, or -1 for the initial state.
func (s *Search) StateParent(nr int) (int, error) { return s.s.StateParent(nr) }

// Rule returns the rule that produced state nr; nil for the initial state and
// for composite strategy transitions.
func (s *Search) Rule(nr int) (*module.Rule, error) { return s.s.Rule(nr) }

// Transition returns the transition that produced state nr.
func (s *Search) Transition(nr int) (strategy.Transition, error) { return s.s.Transition(nr) }

// StrategyContinuation returns the strategy left to run after state nr.
// In a search without strategy it is idle.
func (s *Search) StrategyContinuation(nr int) (*module.Strategy, error) {
	return s.s.Continuation(nr)
}

// Path returns the states from the initial one to nr.
func (s *Search) Path(nr int) ([]int, error) { return s.s.Path(nr) }

// PathLabels returns the transition labels along Path(nr).
func (s *Search) PathLabels(nr int) ([]string, error) { return s.s.PathLabels(nr) }

// NextState returns the i-th successor of state nr, expanding it if needed,
// or -1 when it has no such successor.
func (s *Search) NextState(ctx context.Context, nr, i int) (int, error) {
	return s.s.NextState(ctx, nr, i)
}

// StateCount returns the number of states discovered so far.
func (s *Search) StateCount() int { return s.s.StateCount() }

// Exhausted reports whether every reachable state has been explored.
func (s *Search) Exhausted() bool { return s.s.Exhausted() }

// Snapshot exports the explored graph.
func (s *Search) Snapshot() *domain.Snapshot { return s.s.Snapshot() }

// Unwrap returns the underlying search.
func (s *Search) Unwrap() *search.Search { return s.s }
