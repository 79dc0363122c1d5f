package search

import (
	"github.com/aretw0/espalier/pkg/domain"
)

// Snapshot exports the explored graph and the solutions reported so far.
func (s *Search) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Module:     s.mod.Name,
		Initial:    s.store.String(s.initial),
		SearchType: s.typ,
		Pattern:    s.store.String(s.pattern),
		MaxDepth:   s.maxDepth,
		States:     make([]domain.StateRecord, 0, len(s.states)),
		Solutions:  make([]domain.SolutionRecord, 0, len(s.solutions)),
		Exhausted:  s.exhausted,
	}
	if s.strat != nil {
		snap.Strategy = s.strat.Format(s.store)
	}
	for _, st := range s.states {
		rec := domain.StateRecord{
			Nr:         st.Nr,
			Term:       s.store.String(st.Term),
			Parent:     st.Parent,
			Depth:      st.Depth,
			Transition: st.Transition.Label(s.store),
		}
		if s.machine != nil {
			rec.Continuation = s.machine.Continuation(st.Cont).Format(s.store)
		}
		snap.States = append(snap.States, rec)
	}
	for _, res := range s.solutions {
		rec := domain.SolutionRecord{StateNr: res.StateNr}
		if res.Subst.Len() > 0 {
			rec.Bindings = res.Subst.Map()
		}
		snap.Solutions = append(snap.Solutions, rec)
	}
	return snap
}
