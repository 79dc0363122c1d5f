package module

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/term"
)

// RuleKind separates equations (used by reduce) from rules (used by rewriting and search).
type RuleKind int

const (
	KindEquation RuleKind = iota
	KindRule
)

func (k RuleKind) String() string {
	if k == KindEquation {
		return "eq"
	}
	return "rl"
}

// ConditionKind is the form of one condition fragment.
type ConditionKind int

const (
	// CondEquation holds when both sides reduce to the same term.
	CondEquation ConditionKind = iota
	// CondMatch matches the pattern (LHS) against the reduced RHS, binding new variables.
	CondMatch
	// CondSort holds when the reduced LHS has a sort below Sort.
	CondSort
	// CondRewrite holds when the reduced LHS reaches a term matching RHS by rules.
	CondRewrite
)

func (k ConditionKind) String() string {
	switch k {
	case CondEquation:
		return "="
	case CondMatch:
		return ":="
	case CondSort:
		return ":"
	case CondRewrite:
		return "=>"
	}
	return fmt.Sprintf("ConditionKind(%d)", int(k))
}

// ParseConditionKind reads the name used in module definitions.
func ParseConditionKind(s string) (ConditionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "=", "equation", "":
		return CondEquation, true
	case "match", ":=":
		return CondMatch, true
	case "sort", ":", "membership":
		return CondSort, true
	case "rewrite", "rl", "=>":
		return CondRewrite, true
	}
	return 0, false
}

// Condition is one fragment of a conditional equation or rule.
type Condition struct {
	Kind ConditionKind
	LHS  term.ID
	RHS  term.ID
	Sort *term.Sort
}

// Rule is an equation or a rewrite rule. Rules are immutable after compilation.
type Rule struct {
	Kind       RuleKind
	Label      string
	LHS        term.ID
	RHS        term.ID
	Conditions []Condition
	// Top restricts the rule to the root of the term it is applied to.
	Top bool
	// Owise equations only apply where no other equation does.
	Owise bool
	// Index is the declaration order within its kind.
	Index int
}

// Conditional reports whether the rule has conditions.
func (r *Rule) Conditional() bool { return len(r.Conditions) > 0 }

// Format prints the rule in a Maude-like form, e.g. "rl [ab] : a => b".
func (r *Rule) Format(store *term.Store) string {
	var sb strings.Builder
	if r.Conditional() {
		sb.WriteByte('c')
	}
	sb.WriteString(r.Kind.String())
	sb.WriteByte(' ')
	if r.Label != "" {
		fmt.Fprintf(&sb, "[%s] : ", r.Label)
	}
	arrow := " = "
	if r.Kind == KindRule {
		arrow = " => "
	}
	sb.WriteString(store.String(r.LHS))
	sb.WriteString(arrow)
	sb.WriteString(store.String(r.RHS))
	for i, c := range r.Conditions {
		if i == 0 {
			sb.WriteString(" if ")
		} else {
			sb.WriteString(" /\\ ")
		}
		if c.Kind == CondSort {
			fmt.Fprintf(&sb, "%s : %s", store.String(c.LHS), c.Sort.Name)
			continue
		}
		fmt.Fprintf(&sb, "%s %s %s", store.String(c.LHS), c.Kind, store.String(c.RHS))
	}
	var attrs []string
	if r.Top {
		attrs = append(attrs, "top")
	}
	if r.Owise {
		attrs = append(attrs, "owise")
	}
	if len(attrs) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(attrs, " "))
	}
	return sb.String()
}
