package search

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/strategy"
	"github.com/aretw0/espalier/pkg/term"
)

// State is a node of the search graph.
type State struct {
	Nr     int
	Term   term.ID
	Parent int
	Depth  int
	// Transition is the step from the parent that first reached the state.
	Transition strategy.Transition
	// Cont is the strategy left to run; strategy.Done in a plain search.
	Cont strategy.ContID

	expanded  bool
	completes bool
	next      []int
}

func (s *Search) addState(ctx context.Context, cfg strategy.Config, parent int, tr strategy.Transition) int {
	depth := 0
	if parent != domain.NoParent {
		depth = s.states[parent].Depth + 1
	}
	nr := len(s.states)
	s.states = append(s.states, &State{
		Nr:         nr,
		Term:       cfg.Term,
		Parent:     parent,
		Depth:      depth,
		Transition: tr,
		Cont:       cfg.Cont,
	})
	s.index[cfg] = nr
	s.hooks.EmitState(ctx, s.mod.Name, domain.EventStateDiscovered, nr, parent, depth)
	return nr
}

func (s *Search) atBound(st *State) bool {
	return s.maxDepth >= 0 && st.Depth >= s.maxDepth
}

// expandNext expands the first state not expanded yet. States are expanded in
// number order, which keeps the numbering breadth first.
func (s *Search) expandNext(ctx context.Context) error {
	st := s.states[s.expanded]
	s.expanded++
	st.expanded = true
	if s.atBound(st) {
		return nil
	}

	var transitions []strategy.Transition
	if s.machine != nil {
		next, completes, err := s.machine.Successors(ctx, strategy.Config{Term: st.Term, Cont: st.Cont})
		if err != nil {
			return err
		}
		transitions, st.completes = next, completes
	} else {
		steps, err := s.eng.Steps(ctx, st.Term).All()
		if err != nil {
			return err
		}
		for _, step := range steps {
			transitions = append(transitions, strategy.Transition{
				To:       strategy.Config{Term: step.Result},
				Rule:     step.Rule,
				Position: step.Position,
				Subst:    step.Subst,
				Rewrites: 1,
			})
		}
	}

	for _, tr := range transitions {
		child, ok := s.index[tr.To]
		if !ok {
			child = s.addState(ctx, tr.To, st.Nr, tr)
		}
		if !slices.Contains(st.next, child) {
			st.next = append(st.next, child)
		}
	}
	s.logger.Debug("state expanded", "state", st.Nr, "depth", st.Depth, "successors", len(st.next))
	return nil
}

// expandThrough expands every state up to and including nr.
func (s *Search) expandThrough(ctx context.Context, nr int) error {
	for s.expanded <= nr {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.expandNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// State returns state nr.
func (s *Search) State(nr int) (*State, error) {
	if nr < 0 || nr >= len(s.states) {
		return nil, fmt.Errorf("%w: %d", domain.ErrStateNotFound, nr)
	}
	return s.states[nr], nil
}

// StateCount returns the number of states discovered so far.
func (s *Search) StateCount() int { return len(s.states) }

// StateTerm returns the term of state nr.
func (s *Search) StateTerm(nr int) (term.ID, error) {
	st, err := s.State(nr)
	if err != nil {
		return term.None, err
	}
	return st.Term, nil
}

// StateParent returns the parent of state nr, domain.NoParent for the initial state.
func (s *Search) StateParent(nr int) (int, error) {
	st, err := s.State(nr)
	if err != nil {
		return domain.NoParent, err
	}
	return st.Parent, nil
}

// Rule returns the rule applied to reach state nr. It is nil for the initial
// state and for composite strategy steps.
func (s *Search) Rule(nr int) (*module.Rule, error) {
	st, err := s.State(nr)
	if err != nil {
		return nil, err
	}
	return st.Transition.Rule, nil
}

// Transition returns the step that reached state nr.
func (s *Search) Transition(nr int) (strategy.Transition, error) {
	st, err := s.State(nr)
	if err != nil {
		return strategy.Transition{}, err
	}
	return st.Transition, nil
}

// Continuation returns the strategy still to run from state nr. It is idle
// in a plain search.
func (s *Search) Continuation(nr int) (*module.Strategy, error) {
	st, err := s.State(nr)
	if err != nil {
		return nil, err
	}
	if s.machine == nil {
		return module.Idle(), nil
	}
	return s.machine.Continuation(st.Cont), nil
}

// Path returns the state numbers from the initial state to nr.
func (s *Search) Path(nr int) ([]int, error) {
	if _, err := s.State(nr); err != nil {
		return nil, err
	}
	var path []int
	for cur := nr; cur != domain.NoParent; cur = s.states[cur].Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// PathLabels returns the transition labels along the path to nr.
func (s *Search) PathLabels(nr int) ([]string, error) {
	path, err := s.Path(nr)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(path)-1)
	for _, p := range path[1:] {
		labels = append(labels, s.states[p].Transition.Label(s.store))
	}
	return labels, nil
}

// NextState returns the i-th successor of state nr, exploring the graph as
// needed, or -1 when nr has fewer successors. Successors past the depth bound
// are not explored.
func (s *Search) NextState(ctx context.Context, nr, i int) (int, error) {
	st, err := s.State(nr)
	if err != nil {
		return -1, err
	}
	if err := s.expandThrough(ctx, nr); err != nil {
		return -1, s.fail(err)
	}
	if i < 0 || i >= len(st.next) {
		return -1, nil
	}
	return st.next[i], nil
}
