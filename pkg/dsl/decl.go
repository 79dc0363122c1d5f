package dsl

import "github.com/aretw0/espalier/pkg/module"

// OpBuilder provides a fluent API for configuring an operator.
type OpBuilder struct {
	op      module.OpDef
	builder *Builder
}

// Domain sets the argument sorts.
func (o *OpBuilder) Domain(sorts ...string) *OpBuilder {
	o.op.Domain = sorts
	return o
}

// Range sets the result sort and returns the module builder.
func (o *OpBuilder) Range(sort string) *Builder {
	o.op.Range = sort
	return o.builder
}

// Assoc marks the operator associative.
func (o *OpBuilder) Assoc() *OpBuilder {
	o.op.Attrs.Assoc = true
	return o
}

// Comm marks the operator commutative.
func (o *OpBuilder) Comm() *OpBuilder {
	o.op.Attrs.Comm = true
	return o
}

// Id sets the identity element, given as a constant name.
func (o *OpBuilder) Id(constant string) *OpBuilder {
	o.op.Attrs.ID = constant
	return o
}

// Build returns the underlying declaration.
func (o *OpBuilder) Build() module.OpDef {
	return o.op
}

// RuleBuilder provides a fluent API for configuring a rule or an equation.
type RuleBuilder struct {
	rule    module.RuleDef
	builder *Builder
}

// Rewrites sets both sides and returns the module builder.
func (r *RuleBuilder) Rewrites(lhs, rhs string) *Builder {
	r.rule.LHS = lhs
	r.rule.RHS = rhs
	return r.builder
}

// IfEq adds the condition lhs = rhs.
func (r *RuleBuilder) IfEq(lhs, rhs string) *RuleBuilder {
	r.rule.Conditions = append(r.rule.Conditions, module.ConditionDef{Type: "eq", LHS: lhs, RHS: rhs})
	return r
}

// IfMatch adds the condition pattern := subject.
func (r *RuleBuilder) IfMatch(pattern, subject string) *RuleBuilder {
	r.rule.Conditions = append(r.rule.Conditions, module.ConditionDef{Type: "match", LHS: pattern, RHS: subject})
	return r
}

// IfSort adds the condition t : sort.
func (r *RuleBuilder) IfSort(t, sort string) *RuleBuilder {
	r.rule.Conditions = append(r.rule.Conditions, module.ConditionDef{Type: "sort", LHS: t, Sort: sort})
	return r
}

// IfRewrites adds the condition lhs => rhs (rules only).
func (r *RuleBuilder) IfRewrites(lhs, rhs string) *RuleBuilder {
	r.rule.Conditions = append(r.rule.Conditions, module.ConditionDef{Type: "rewrite", LHS: lhs, RHS: rhs})
	return r
}

// Top restricts the rule to the top position.
func (r *RuleBuilder) Top() *RuleBuilder {
	r.rule.Top = true
	return r
}

// Owise makes the equation apply only when no other equation does.
func (r *RuleBuilder) Owise() *RuleBuilder {
	r.rule.Owise = true
	return r
}

// Build returns the underlying declaration.
func (r *RuleBuilder) Build() module.RuleDef {
	return r.rule
}
