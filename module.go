package espalier

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/rewrite"
)

// Module is a compiled module together with its rewrite engine.
type Module struct {
	def *module.Module
	eng *rewrite.Engine
}

// Name returns the module name.
func (m *Module) Name() string { return m.def.Name }

// Definition returns the compiled module.
func (m *Module) Definition() *module.Module { return m.def }

// Rewriter returns the rewrite engine of the module.
func (m *Module) Rewriter() *rewrite.Engine { return m.eng }

// Labels returns the rule labels in declaration order.
func (m *Module) Labels() []string { return m.def.Labels() }

// StrategyNames returns the named strategies in declaration order.
func (m *Module) StrategyNames() []string { return m.def.StrategyNames() }

// ParseTerm reads a term in prefix notation and returns a new handle for it.
func (m *Module) ParseTerm(text string) (*Term, error) {
	id, err := m.def.ParseTerm(text)
	if err != nil {
		return nil, err
	}
	return &Term{mod: m, id: id}, nil
}

// ParseStrategy reads a strategy expression. Labels are checked when the
// strategy is run.
func (m *Module) ParseStrategy(text string) (*module.Strategy, error) {
	return m.def.ParseStrategy(text)
}

// FormatStrategy prints s in the syntax ParseStrategy reads.
func (m *Module) FormatStrategy(s *module.Strategy) string {
	return s.Format(m.def.Store)
}

// conditionOps are tried in order; ":=" must come before "=".
var conditionOps = []struct {
	sep  string
	kind string
}{
	{" := ", "match"},
	{" = ", "eq"},
	{" : ", "sort"},
}

// ParseCondition reads a conjunction of condition fragments separated by
// "/\": equations "L = R", matches "P := T" and memberships "T : Sort".
func (m *Module) ParseCondition(text string) ([]module.Condition, error) {
	var conds []module.Condition
	for _, frag := range strings.Split(text, `/\`) {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		cd, err := splitCondition(frag)
		if err != nil {
			return nil, err
		}
		c, err := m.def.ParseCondition(cd)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func splitCondition(frag string) (module.ConditionDef, error) {
	for _, op := range conditionOps {
		lhs, rhs, ok := strings.Cut(frag, op.sep)
		if !ok {
			continue
		}
		cd := module.ConditionDef{Type: op.kind, LHS: strings.TrimSpace(lhs)}
		if op.kind == "sort" {
			cd.Sort = strings.TrimSpace(rhs)
		} else {
			cd.RHS = strings.TrimSpace(rhs)
		}
		return cd, nil
	}
	return module.ConditionDef{}, fmt.Errorf("%w: condition %q is not of the form L = R, P := T or T : S", domain.ErrParse, frag)
}
