package module

import (
	"github.com/aretw0/espalier/pkg/term"
)

// Definition is the declarative form of a module, as read from YAML or JSON.
type Definition struct {
	Name        string            `yaml:"name" json:"name" mapstructure:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Sorts       []string          `yaml:"sorts" json:"sorts" mapstructure:"sorts"`
	Subsorts    []string          `yaml:"subsorts,omitempty" json:"subsorts,omitempty" mapstructure:"subsorts"`
	Ops         []OpDef           `yaml:"ops" json:"ops" mapstructure:"ops"`
	Vars        map[string]string `yaml:"vars,omitempty" json:"vars,omitempty" mapstructure:"vars"`
	Equations   []RuleDef         `yaml:"equations,omitempty" json:"equations,omitempty" mapstructure:"equations"`
	Rules       []RuleDef         `yaml:"rules,omitempty" json:"rules,omitempty" mapstructure:"rules"`
	Strategies  []StrategyDef     `yaml:"strategies,omitempty" json:"strategies,omitempty" mapstructure:"strategies"`
}

// OpDef declares one operator (or one overload of it).
type OpDef struct {
	Name   string            `yaml:"name" json:"name" mapstructure:"name"`
	Domain []string          `yaml:"domain,omitempty" json:"domain,omitempty" mapstructure:"domain"`
	Range  string            `yaml:"range" json:"range" mapstructure:"range"`
	Attrs  term.OpAttributes `yaml:"attrs,omitempty" json:"attrs,omitempty" mapstructure:"attrs"`
}

// RuleDef declares an equation or a rule. Sides are terms in prefix notation.
type RuleDef struct {
	Label      string         `yaml:"label,omitempty" json:"label,omitempty" mapstructure:"label"`
	LHS        string         `yaml:"lhs" json:"lhs" mapstructure:"lhs"`
	RHS        string         `yaml:"rhs" json:"rhs" mapstructure:"rhs"`
	Conditions []ConditionDef `yaml:"if,omitempty" json:"if,omitempty" mapstructure:"if"`
	Top        bool           `yaml:"top,omitempty" json:"top,omitempty" mapstructure:"top"`
	Owise      bool           `yaml:"owise,omitempty" json:"owise,omitempty" mapstructure:"owise"`
}

// ConditionDef is one condition fragment. Type is eq, match, sort or rewrite.
type ConditionDef struct {
	Type string `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	LHS  string `yaml:"lhs" json:"lhs" mapstructure:"lhs"`
	RHS  string `yaml:"rhs,omitempty" json:"rhs,omitempty" mapstructure:"rhs"`
	Sort string `yaml:"sort,omitempty" json:"sort,omitempty" mapstructure:"sort"`
}

// StrategyDef names a strategy expression.
type StrategyDef struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	Expr string `yaml:"expr" json:"expr" mapstructure:"expr"`
}
