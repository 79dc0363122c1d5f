package strategy

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
	"github.com/aretw0/espalier/pkg/term"
	"github.com/hashicorp/go-set/v3"
)

// Config is a point of strategy execution: the current term and what is left to run.
type Config struct {
	Term term.ID
	Cont ContID
}

// Transition is one strategic step. It is either a single rule application
// (Rule is set) or a composite step taken by a sub-strategy run to completion
// (Strategy is set), as for one(S), S ! and the condition of S ? A : B.
type Transition struct {
	To       Config
	Rule     *module.Rule
	Position term.Position
	Subst    match.Substitution
	Strategy *module.Strategy
	// Rewrites counts the rule applications inside the transition.
	Rewrites int
}

// Label names the transition: the rule label or the composite strategy.
func (tr Transition) Label(store *term.Store) string {
	if tr.Rule != nil {
		if tr.Rule.Label == "" {
			return tr.Rule.Format(store)
		}
		return tr.Rule.Label
	}
	if tr.Strategy != nil {
		return tr.Strategy.Format(store)
	}
	return ""
}

// Machine interprets strategy expressions as a continuation machine.
// It owns the continuation table, so configurations from different machines
// must not be mixed. A Machine is not safe for concurrent use.
type Machine struct {
	eng   *rewrite.Engine
	mod   *module.Module
	store *term.Store
	conts *contTable
}

// NewMachine creates a machine rewriting with eng.
func NewMachine(eng *rewrite.Engine) *Machine {
	mod := eng.Module()
	return &Machine{eng: eng, mod: mod, store: mod.Store, conts: newContTable()}
}

// Engine returns the rewrite engine of the machine.
func (m *Machine) Engine() *rewrite.Engine { return m.eng }

// Start validates s and returns the initial configuration for running it on t.
func (m *Machine) Start(t term.ID, s *module.Strategy) (Config, error) {
	if err := m.mod.Validate(s); err != nil {
		return Config{}, err
	}
	return Config{Term: t, Cont: m.conts.push(s, Done)}, nil
}

// Continuation returns the strategy still to run from k, idle when nothing is left.
func (m *Machine) Continuation(k ContID) *module.Strategy {
	return m.conts.expression(k)
}

// Frames returns the continuation stack from k, innermost first.
func (m *Machine) Frames(k ContID) []*module.Strategy {
	return m.conts.frames(k)
}

// Successors resolves the control of cfg without rewriting until every branch
// either applies exactly one rule (or one composite step) or runs out of
// strategy. It returns the transitions in exploration order and reports whether
// some branch completes at cfg.Term.
func (m *Machine) Successors(ctx context.Context, cfg Config) ([]Transition, bool, error) {
	var out []Transition
	completes := false
	seen := set.New[Config](8)
	work := []Config{cfg}

	push := func(cs ...Config) {
		// Reverse order keeps the first alternative on top.
		for i := len(cs) - 1; i >= 0; i-- {
			work = append(work, cs[i])
		}
	}

	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if !seen.Insert(cur) {
			continue
		}
		if cur.Cont == Done {
			completes = true
			continue
		}
		s, rest := m.conts.pop(cur.Cont)
		t := cur.Term
		at := func(k ContID) Config { return Config{Term: t, Cont: k} }

		switch s.Op {
		case module.OpIdle:
			push(at(rest))

		case module.OpFail:

		case module.OpApply:
			opts := []rewrite.StepOption{rewrite.WithLabel(s.Label)}
			if s.Top {
				opts = append(opts, rewrite.AtTop())
			}
			steps, err := m.eng.Steps(ctx, t, opts...).All()
			if err != nil {
				return nil, false, err
			}
			for _, st := range steps {
				out = append(out, Transition{
					To:       Config{Term: st.Result, Cont: rest},
					Rule:     st.Rule,
					Position: st.Position,
					Subst:    st.Subst,
					Rewrites: 1,
				})
			}

		case module.OpSeq:
			push(at(m.conts.push(s.Subs[0], m.conts.push(s.Subs[1], rest))))

		case module.OpUnion:
			alts := make([]Config, len(s.Subs))
			for i, alt := range s.Subs {
				alts[i] = at(m.conts.push(alt, rest))
			}
			push(alts...)

		case module.OpIterate:
			push(at(rest), at(m.conts.push(s.Subs[0], m.conts.push(s, rest))))

		case module.OpPlus:
			push(at(m.conts.push(s.Subs[0], m.conts.push(s.Subs[1], rest))))

		case module.OpTest:
			ok, err := m.test(t, s)
			if err != nil {
				return nil, false, err
			}
			if ok {
				push(at(rest))
			}

		case module.OpCall:
			body, ok := m.mod.Strategy(s.Label)
			if !ok {
				return nil, false, fmt.Errorf("strategy %s is not defined", s.Label)
			}
			push(at(m.conts.push(body, rest)))

		case module.OpCond, module.OpOrElse, module.OpNot, module.OpTry:
			sols, err := m.solutions(ctx, t, s.Subs[0], -1)
			if err != nil {
				return nil, false, err
			}
			if len(sols) == 0 {
				push(at(m.conts.push(s.Subs[2], rest)))
				continue
			}
			then := m.conts.push(s.Subs[1], rest)
			for _, sol := range sols {
				if sol.rewrites == 0 {
					push(Config{Term: sol.term, Cont: then})
					continue
				}
				out = append(out, Transition{To: Config{Term: sol.term, Cont: then}, Strategy: s.Subs[0], Rewrites: sol.rewrites})
			}

		case module.OpOne:
			sols, err := m.solutions(ctx, t, s.Subs[0], 1)
			if err != nil {
				return nil, false, err
			}
			for _, sol := range sols {
				if sol.rewrites == 0 {
					push(Config{Term: sol.term, Cont: rest})
					continue
				}
				out = append(out, Transition{To: Config{Term: sol.term, Cont: rest}, Strategy: s, Rewrites: sol.rewrites})
			}

		case module.OpNormalize:
			sols, err := m.solutions(ctx, t, s.Subs[0], -1)
			if err != nil {
				return nil, false, err
			}
			progressed := false
			for _, sol := range sols {
				if sol.term == t {
					continue
				}
				progressed = true
				out = append(out, Transition{To: Config{Term: sol.term, Cont: cur.Cont}, Strategy: s.Subs[0], Rewrites: sol.rewrites})
			}
			if !progressed {
				push(at(rest))
			}
		}
	}
	return out, completes, nil
}

// test reports whether the pattern of a match/amatch node matches t.
func (m *Machine) test(t term.ID, s *module.Strategy) (bool, error) {
	matcher := m.eng.Matcher()
	if !s.Anywhere {
		_, ok := matcher.First(s.Pattern, t)
		return ok, nil
	}
	for _, pos := range m.store.Positions(t) {
		sub, err := m.store.Subterm(t, pos)
		if err != nil {
			return false, err
		}
		if _, ok := matcher.First(s.Pattern, sub, match.WithExtension()); ok {
			return true, nil
		}
	}
	return false, nil
}

type solution struct {
	term     term.ID
	rewrites int
}

// solutions runs s on t to completion and returns its distinct results,
// at most limit of them when limit is positive.
func (m *Machine) solutions(ctx context.Context, t term.ID, s *module.Strategy, limit int) ([]solution, error) {
	r := m.run(Config{Term: t, Cont: m.conts.push(s, Done)})
	var out []solution
	for limit < 0 || len(out) < limit {
		sol, n, ok, err := r.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, solution{term: sol, rewrites: n})
	}
	return out, nil
}
