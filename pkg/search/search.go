package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/strategy"
	"github.com/aretw0/espalier/pkg/term"
)

// Result is one reported solution: a state whose term matches the pattern.
type Result struct {
	StateNr int
	Subst   match.Substitution
}

// Option configures a Search.
type Option func(*Search)

// WithType sets the search type. The default is domain.AnySteps.
func WithType(t domain.SearchType) Option {
	return func(s *Search) {
		s.typ = t
	}
}

// WithMaxDepth bounds the number of transitions from the initial state.
// domain.Unbounded (the default) means no bound.
func WithMaxDepth(depth int) Option {
	return func(s *Search) {
		s.maxDepth = depth
	}
}

// WithStrategy guides the search with a strategy: transitions are strategy
// steps and states remember the strategy left to run.
func WithStrategy(strat *module.Strategy) Option {
	return func(s *Search) {
		s.strat = strat
	}
}

// WithCondition only reports matches satisfying conds.
func WithCondition(conds ...module.Condition) Option {
	return func(s *Search) {
		s.conds = conds
	}
}

// Search is a lazily explored state graph together with a pattern query.
// States are numbered in breadth-first order from the initial state 0, so the
// first state reported for a pattern is reachable in the fewest transitions.
// A Search is not safe for concurrent use.
type Search struct {
	eng     *rewrite.Engine
	mod     *module.Module
	store   *term.Store
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	initial term.ID
	pattern term.ID
	conds   []module.Condition

	typ      domain.SearchType
	maxDepth int
	strat    *module.Strategy
	machine  *strategy.Machine

	states   []*State
	index    map[strategy.Config]int
	expanded int

	checked   int
	pending   []Result
	solutions []Result
	exhausted bool
	err       error
}

// New creates a search from initial for states matching pattern. The initial
// term is reduced first. Nothing else is explored until Next is called.
func New(ctx context.Context, eng *rewrite.Engine, initial, pattern term.ID, opts ...Option) (*Search, error) {
	s := &Search{
		eng:      eng,
		mod:      eng.Module(),
		store:    eng.Module().Store,
		logger:   eng.Logger(),
		hooks:    eng.Hooks(),
		pattern:  pattern,
		typ:      domain.AnySteps,
		maxDepth: domain.Unbounded,
		index:    make(map[strategy.Config]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.typ.MarshalText(); err != nil {
		return nil, err
	}
	if s.typ == domain.OneStep && (s.maxDepth < 0 || s.maxDepth > 1) {
		s.maxDepth = 1
	}
	if s.store.KindOf(pattern) != s.store.KindOf(initial) {
		return nil, fmt.Errorf("%w: pattern and initial term have different kinds", domain.ErrSortMismatch)
	}

	start, _, err := eng.Reduce(ctx, initial)
	if err != nil {
		return nil, err
	}
	s.initial = start
	root := strategy.Config{Term: start}
	if s.strat != nil {
		s.machine = strategy.NewMachine(eng)
		if root, err = s.machine.Start(start, s.strat); err != nil {
			return nil, err
		}
	}
	s.addState(ctx, root, domain.NoParent, strategy.Transition{})
	return s, nil
}

// Next returns the next solution. It explores the graph breadth first only as
// far as needed. When the reachable states are exhausted it returns false and
// a nil error; later calls keep returning false.
func (s *Search) Next(ctx context.Context) (Result, bool, error) {
	if s.err != nil {
		return Result{}, false, s.err
	}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, false, err
		}
		if len(s.pending) > 0 {
			res := s.pending[0]
			s.pending = s.pending[1:]
			s.solutions = append(s.solutions, res)
			st := s.states[res.StateNr]
			s.hooks.EmitState(ctx, s.mod.Name, domain.EventSolution, st.Nr, st.Parent, st.Depth)
			s.logger.Debug("search solution", "state", st.Nr, "depth", st.Depth)
			return res, true, nil
		}
		if s.checked == len(s.states) {
			// Every known state was checked: grow the graph by one expansion.
			if s.expanded == len(s.states) {
				s.exhausted = true
				return Result{}, false, nil
			}
			if err := s.expandNext(ctx); err != nil {
				return Result{}, false, s.fail(err)
			}
			continue
		}
		st := s.states[s.checked]
		ok, err := s.eligible(ctx, st)
		if err != nil {
			return Result{}, false, s.fail(err)
		}
		s.checked++
		if !ok {
			continue
		}
		if err := s.collect(ctx, st); err != nil {
			return Result{}, false, s.fail(err)
		}
	}
}

func (s *Search) fail(err error) error {
	s.err = err
	return err
}

// eligible reports whether the search type allows st as a solution.
func (s *Search) eligible(ctx context.Context, st *State) (bool, error) {
	switch s.typ {
	case domain.OneStep:
		return st.Depth == 1, nil
	case domain.AtLeastOneStep:
		return st.Depth >= 1, nil
	case domain.NormalForm:
		if s.atBound(st) {
			return false, nil
		}
		if err := s.expandThrough(ctx, st.Nr); err != nil {
			return false, err
		}
		if len(st.next) > 0 {
			return false, nil
		}
		return s.machine == nil || st.completes, nil
	}
	return true, nil
}

// collect queues every match of the pattern at st that satisfies the condition.
func (s *Search) collect(ctx context.Context, st *State) error {
	it := s.eng.Matcher().Match(s.pattern, st.Term)
	for {
		sub, ok := it.Next()
		if !ok {
			break
		}
		if len(s.conds) == 0 {
			s.pending = append(s.pending, Result{StateNr: st.Nr, Subst: sub})
			continue
		}
		err := s.eng.Solve(ctx, s.conds, sub, func(sol match.Substitution) bool {
			s.pending = append(s.pending, Result{StateNr: st.Nr, Subst: sol})
			return true
		})
		if err != nil {
			return err
		}
	}
	return it.Err()
}

// Solutions returns the results reported so far.
func (s *Search) Solutions() []Result { return s.solutions }

// Exhausted reports whether every reachable state has been checked.
func (s *Search) Exhausted() bool { return s.exhausted }

// Type returns the search type.
func (s *Search) Type() domain.SearchType { return s.typ }

// MaxDepth returns the depth bound, domain.Unbounded if there is none.
func (s *Search) MaxDepth() int { return s.maxDepth }

// Pattern returns the pattern searched for.
func (s *Search) Pattern() term.ID { return s.pattern }

// Strategy returns the guiding strategy, nil for a plain search.
func (s *Search) Strategy() *module.Strategy { return s.strat }

// Module returns the module searched in.
func (s *Search) Module() *module.Module { return s.mod }
