package module

import (
	"fmt"
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/term"
)

// Module is a compiled module: signature, term store, equations, rules and
// named strategies. It is immutable once compiled and safe for concurrent reads.
type Module struct {
	Name        string
	Description string
	Sig         *term.Signature
	Store       *term.Store
	Vars        map[string]*term.Sort
	Equations   []*Rule
	Rules       []*Rule

	strategies map[string]*Strategy
	stratOrder []string
}

// ParseTerm reads a term in prefix notation. Declared variables may be used
// without a sort annotation.
func (m *Module) ParseTerm(text string) (term.ID, error) {
	return m.termParser().Parse(text)
}

// ParseStrategy reads a strategy expression. Names of strategy definitions are
// calls, every other name is a rule label.
func (m *Module) ParseStrategy(text string) (*Strategy, error) {
	names := make(map[string]bool, len(m.strategies))
	for name := range m.strategies {
		names[name] = true
	}
	return parseStrategy(text, m.termParser(), names)
}

func (m *Module) termParser() *term.Parser {
	return term.NewParser(m.Store, term.WithVars(m.Vars))
}

// RulesByLabel returns the rules labeled label, or every rule for "".
func (m *Module) RulesByLabel(label string) []*Rule {
	if label == "" {
		return m.Rules
	}
	var out []*Rule
	for _, r := range m.Rules {
		if r.Label == label {
			out = append(out, r)
		}
	}
	return out
}

// HasLabel reports whether some rule carries label.
func (m *Module) HasLabel(label string) bool {
	return slices.ContainsFunc(m.Rules, func(r *Rule) bool { return r.Label == label })
}

// Labels returns the distinct rule labels in declaration order.
func (m *Module) Labels() []string {
	var out []string
	for _, r := range m.Rules {
		if r.Label != "" && !slices.Contains(out, r.Label) {
			out = append(out, r.Label)
		}
	}
	return out
}

// Strategy returns the body of a named strategy definition.
func (m *Module) Strategy(name string) (*Strategy, bool) {
	s, ok := m.strategies[name]
	return s, ok
}

// StrategyNames returns the strategy definitions in declaration order.
func (m *Module) StrategyNames() []string { return m.stratOrder }

// Validate checks that every rule label and strategy name used by s exists,
// following named strategies transitively.
func (m *Module) Validate(s *Strategy) error {
	seen := make(map[string]bool)
	var check func(*Strategy) error
	check = func(root *Strategy) error {
		var err error
		root.Walk(func(n *Strategy) {
			if err != nil {
				return
			}
			switch n.Op {
			case OpApply:
				if n.Label != "" && !m.HasLabel(n.Label) {
					err = fmt.Errorf("%w: %s", domain.ErrUnboundStrategyLabel, n.Label)
				}
			case OpCall:
				body, ok := m.strategies[n.Label]
				if !ok {
					err = fmt.Errorf("%w: strategy %s", domain.ErrUnboundStrategyLabel, n.Label)
					return
				}
				if body != nil && !seen[n.Label] {
					seen[n.Label] = true
					err = check(body)
				}
			}
		})
		return err
	}
	return check(s)
}
