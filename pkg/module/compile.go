package module

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/term"
)

type compiler struct {
	def  Definition
	mod  *Module
	errs []error
}

func (c *compiler) fail(section string, index int, name string, err error) {
	c.errs = append(c.errs, &DefinitionError{Section: section, Index: index, Name: name, Err: err})
}

func (c *compiler) result() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &AggregateError{Module: c.def.Name, Errors: c.errs}
}

// Compile builds a Module from its definition. Every problem found is reported
// in one AggregateError.
func Compile(def Definition) (*Module, error) {
	c := &compiler{def: def}
	if strings.TrimSpace(def.Name) == "" {
		c.fail("name", 0, "", fmt.Errorf("%w: module name is required", domain.ErrInvalidModule))
		return nil, c.result()
	}

	sig := term.NewSignature()
	c.declareSignature(sig)
	if err := c.result(); err != nil {
		return nil, err
	}
	if err := sig.Seal(); err != nil {
		c.fail("signature", 0, "", err)
		return nil, c.result()
	}
	store, err := term.NewStore(sig)
	if err != nil {
		c.fail("signature", 0, "", err)
		return nil, c.result()
	}

	c.mod = &Module{
		Name:        def.Name,
		Description: def.Description,
		Sig:         sig,
		Store:       store,
		Vars:        make(map[string]*term.Sort, len(def.Vars)),
		strategies:  make(map[string]*Strategy, len(def.Strategies)),
	}
	for name, sortName := range def.Vars {
		srt, ok := sig.Sort(sortName)
		if !ok {
			c.fail("vars", 0, name, fmt.Errorf("%w: %s", domain.ErrUnknownSort, sortName))
			continue
		}
		c.mod.Vars[name] = srt
	}

	for i, rd := range def.Equations {
		if r, ok := c.compileRule("equations", i, rd, KindEquation); ok {
			r.Index = len(c.mod.Equations)
			c.mod.Equations = append(c.mod.Equations, r)
		}
	}
	for i, rd := range def.Rules {
		if r, ok := c.compileRule("rules", i, rd, KindRule); ok {
			r.Index = len(c.mod.Rules)
			c.mod.Rules = append(c.mod.Rules, r)
		}
	}
	c.compileStrategies()

	if err := c.result(); err != nil {
		return nil, err
	}
	return c.mod, nil
}

func (c *compiler) declareSignature(sig *term.Signature) {
	for i, name := range c.def.Sorts {
		if _, err := sig.AddSort(strings.TrimSpace(name)); err != nil {
			c.fail("sorts", i, name, err)
		}
	}
	for i, decl := range c.def.Subsorts {
		// "A B < C < D" declares A<C, B<C and C<D.
		groups := strings.Split(decl, "<")
		if len(groups) < 2 {
			c.fail("subsorts", i, decl, fmt.Errorf("%w: expected \"Sub < Super\"", domain.ErrInvalidModule))
			continue
		}
		for g := 0; g+1 < len(groups); g++ {
			for _, sub := range strings.Fields(groups[g]) {
				for _, super := range strings.Fields(groups[g+1]) {
					if err := sig.AddSubsort(sub, super); err != nil {
						c.fail("subsorts", i, decl, err)
					}
				}
			}
		}
	}
	for i, op := range c.def.Ops {
		if _, err := sig.AddOp(op.Name, op.Domain, op.Range, op.Attrs); err != nil {
			c.fail("ops", i, op.Name, err)
		}
	}
}

func (c *compiler) compileRule(section string, index int, rd RuleDef, kind RuleKind) (*Rule, bool) {
	m := c.mod
	fail := func(err error) (*Rule, bool) {
		c.fail(section, index, rd.Label, err)
		return nil, false
	}

	lhs, err := m.ParseTerm(rd.LHS)
	if err != nil {
		return fail(fmt.Errorf("lhs: %w", err))
	}
	rhs, err := m.ParseTerm(rd.RHS)
	if err != nil {
		return fail(fmt.Errorf("rhs: %w", err))
	}
	st := m.Store
	if st.IsVariable(lhs) && kind == KindEquation {
		return fail(fmt.Errorf("%w: equation lhs cannot be a variable", domain.ErrInvalidModule))
	}
	if st.KindOf(lhs) != st.KindOf(rhs) {
		return fail(fmt.Errorf("%w: lhs has kind %s but rhs has kind %s", domain.ErrSortMismatch, st.KindOf(lhs), st.KindOf(rhs)))
	}
	if kind == KindRule && rd.Owise {
		return fail(fmt.Errorf("%w: owise only applies to equations", domain.ErrInvalidModule))
	}

	r := &Rule{Kind: kind, Label: rd.Label, LHS: lhs, RHS: rhs, Top: rd.Top, Owise: rd.Owise}
	bound := make(map[term.ID]bool)
	for _, v := range st.Vars(lhs) {
		bound[v] = true
	}
	for j, cd := range rd.Conditions {
		cond, err := c.compileCondition(cd, kind)
		if err != nil {
			return fail(fmt.Errorf("condition %d: %w", j+1, err))
		}
		// Variables of a matching or rewrite pattern become bound; all others must already be.
		var uses, binds []term.ID
		switch cond.Kind {
		case CondMatch, CondRewrite:
			uses, binds = st.Vars(cond.RHS), st.Vars(cond.LHS)
			if cond.Kind == CondRewrite {
				uses, binds = st.Vars(cond.LHS), st.Vars(cond.RHS)
			}
		case CondEquation:
			uses = append(st.Vars(cond.LHS), st.Vars(cond.RHS)...)
		case CondSort:
			uses = st.Vars(cond.LHS)
		}
		for _, v := range uses {
			if !bound[v] {
				return fail(fmt.Errorf("%w: condition %d uses unbound variable %s", domain.ErrInvalidModule, j+1, st.String(v)))
			}
		}
		for _, v := range binds {
			bound[v] = true
		}
		r.Conditions = append(r.Conditions, cond)
	}
	for _, v := range st.Vars(rhs) {
		if !bound[v] {
			return fail(fmt.Errorf("%w: rhs uses unbound variable %s", domain.ErrInvalidModule, st.String(v)))
		}
	}
	return r, true
}

func (c *compiler) compileCondition(cd ConditionDef, kind RuleKind) (Condition, error) {
	return c.mod.parseCondition(cd, kind)
}

// ParseCondition compiles a condition over the terms of m, for instance the
// side condition of a search. Rewrite conditions are not accepted.
func (m *Module) ParseCondition(cd ConditionDef) (Condition, error) {
	return m.parseCondition(cd, KindEquation)
}

func (m *Module) parseCondition(cd ConditionDef, kind RuleKind) (Condition, error) {
	ck, ok := ParseConditionKind(cd.Type)
	if !ok {
		return Condition{}, fmt.Errorf("%w: unknown condition type %q", domain.ErrInvalidModule, cd.Type)
	}
	if ck == CondRewrite && kind == KindEquation {
		return Condition{}, fmt.Errorf("%w: rewrite conditions are only allowed in rules", domain.ErrInvalidModule)
	}
	lhs, err := m.ParseTerm(cd.LHS)
	if err != nil {
		return Condition{}, err
	}
	cond := Condition{Kind: ck, LHS: lhs, RHS: term.None}
	if ck == CondSort {
		srt, ok := m.Sig.Sort(cd.Sort)
		if !ok {
			return Condition{}, fmt.Errorf("%w: %s", domain.ErrUnknownSort, cd.Sort)
		}
		cond.Sort = srt
		return cond, nil
	}
	rhs, err := m.ParseTerm(cd.RHS)
	if err != nil {
		return Condition{}, err
	}
	if m.Store.KindOf(lhs) != m.Store.KindOf(rhs) {
		return Condition{}, fmt.Errorf("%w: condition sides have different kinds", domain.ErrSortMismatch)
	}
	cond.RHS = rhs
	return cond, nil
}

func (c *compiler) compileStrategies() {
	m := c.mod
	for i, sd := range c.def.Strategies {
		if sd.Name == "" {
			c.fail("strategies", i, "", fmt.Errorf("%w: strategy name is required", domain.ErrInvalidModule))
			continue
		}
		if _, dup := m.strategies[sd.Name]; dup {
			c.fail("strategies", i, sd.Name, fmt.Errorf("%w: duplicate strategy", domain.ErrInvalidModule))
			continue
		}
		// Register names first so definitions may call each other.
		m.strategies[sd.Name] = nil
		m.stratOrder = append(m.stratOrder, sd.Name)
	}
	for i, sd := range c.def.Strategies {
		if sd.Name == "" || m.strategies[sd.Name] != nil {
			continue
		}
		s, err := m.ParseStrategy(sd.Expr)
		if err != nil {
			c.fail("strategies", i, sd.Name, err)
			continue
		}
		m.strategies[sd.Name] = s
	}
	for i, sd := range c.def.Strategies {
		body := m.strategies[sd.Name]
		if body == nil {
			continue
		}
		if err := m.Validate(body); err != nil {
			c.fail("strategies", i, sd.Name, err)
		}
	}
}
