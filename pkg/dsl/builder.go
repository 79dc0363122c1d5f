package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/module"
)

// Builder manages the module construction.
type Builder struct {
	def   module.Definition
	ops   []*OpBuilder
	rules []*RuleBuilder
	eqs   []*RuleBuilder
}

// New creates a new module builder.
func New(name string) *Builder {
	return &Builder{
		def: module.Definition{Name: name},
	}
}

// Describe sets the module description.
func (b *Builder) Describe(text string) *Builder {
	b.def.Description = text
	return b
}

// Sorts declares sorts. Repeated names are ignored.
func (b *Builder) Sorts(names ...string) *Builder {
	for _, name := range names {
		if !contains(b.def.Sorts, name) {
			b.def.Sorts = append(b.def.Sorts, name)
		}
	}
	return b
}

// Subsort declares that each of lower is a subsort of upper.
func (b *Builder) Subsort(upper string, lower ...string) *Builder {
	b.def.Subsorts = append(b.def.Subsorts, strings.Join(lower, " ")+" < "+upper)
	return b
}

// Op declares an operator (or another overload of it).
func (b *Builder) Op(name string) *OpBuilder {
	ob := &OpBuilder{op: module.OpDef{Name: name}, builder: b}
	b.ops = append(b.ops, ob)
	return ob
}

// Var declares variables of one sort.
func (b *Builder) Var(sort string, names ...string) *Builder {
	if b.def.Vars == nil {
		b.def.Vars = make(map[string]string)
	}
	for _, name := range names {
		b.def.Vars[name] = sort
	}
	return b
}

// Rule adds a rewrite rule. The label may be empty.
func (b *Builder) Rule(label string) *RuleBuilder {
	rb := &RuleBuilder{rule: module.RuleDef{Label: label}, builder: b}
	b.rules = append(b.rules, rb)
	return rb
}

// Eq adds an equation. The label may be empty.
func (b *Builder) Eq(label string) *RuleBuilder {
	rb := &RuleBuilder{rule: module.RuleDef{Label: label}, builder: b}
	b.eqs = append(b.eqs, rb)
	return rb
}

// Strategy names a strategy expression.
func (b *Builder) Strategy(name, expr string) *Builder {
	b.def.Strategies = append(b.def.Strategies, module.StrategyDef{Name: name, Expr: expr})
	return b
}

// Definition returns the declarative form of the module.
func (b *Builder) Definition() module.Definition {
	def := b.def
	def.Sorts = append([]string(nil), b.def.Sorts...)
	def.Subsorts = append([]string(nil), b.def.Subsorts...)
	if b.def.Vars != nil {
		def.Vars = make(map[string]string, len(b.def.Vars))
		for k, v := range b.def.Vars {
			def.Vars[k] = v
		}
	}
	def.Strategies = append([]module.StrategyDef(nil), b.def.Strategies...)
	def.Ops = make([]module.OpDef, 0, len(b.ops))
	for _, ob := range b.ops {
		def.Ops = append(def.Ops, ob.op)
	}
	for _, rb := range b.eqs {
		def.Equations = append(def.Equations, rb.Build())
	}
	for _, rb := range b.rules {
		def.Rules = append(def.Rules, rb.Build())
	}
	return def
}

// Compile checks and compiles the module.
func (b *Builder) Compile() (*module.Module, error) {
	return module.Compile(b.Definition())
}

// Build compiles the module into a memory Loader holding it.
func (b *Builder) Build() (*memory.Loader, error) {
	def := b.Definition()
	if _, err := module.Compile(def); err != nil {
		return nil, err
	}
	loader, err := memory.NewFromDefinitions(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
