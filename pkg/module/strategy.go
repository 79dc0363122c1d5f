package module

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/term"
)

// StrategyOp tags a strategy expression node.
type StrategyOp int

const (
	OpIdle StrategyOp = iota
	OpFail
	// OpApply rewrites once with the rules carrying Label (any rule when Label is empty).
	OpApply
	OpSeq
	OpUnion
	OpIterate
	OpPlus
	OpNormalize
	// OpTest yields the term unchanged when Pattern matches (at the top, or anywhere for amatch).
	OpTest
	OpCond
	OpOrElse
	OpNot
	OpTry
	OpOne
	OpCall
)

var opNames = map[StrategyOp]string{
	OpIdle:      "idle",
	OpFail:      "fail",
	OpApply:     "apply",
	OpSeq:       "seq",
	OpUnion:     "union",
	OpIterate:   "iterate",
	OpPlus:      "one-or-more",
	OpNormalize: "normalize",
	OpTest:      "test",
	OpCond:      "cond",
	OpOrElse:    "or-else",
	OpNot:       "not",
	OpTry:       "try",
	OpOne:       "one",
	OpCall:      "call",
}

func (op StrategyOp) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("StrategyOp(%d)", int(op))
}

// Strategy is an immutable strategy expression tree.
// Nodes are compared by pointer; the interpreter keeps them as continuation frames.
type Strategy struct {
	Op       StrategyOp
	Label    string
	Top      bool
	Pattern  term.ID
	Anywhere bool
	Subs     []*Strategy
}

var (
	idleNode = &Strategy{Op: OpIdle, Pattern: term.None}
	failNode = &Strategy{Op: OpFail, Pattern: term.None}
)

// Idle succeeds once, leaving the term unchanged.
func Idle() *Strategy { return idleNode }

// Fail never succeeds.
func Fail() *Strategy { return failNode }

// Apply rewrites with the rules labeled label, at any position.
func Apply(label string) *Strategy {
	return &Strategy{Op: OpApply, Label: label, Pattern: term.None}
}

// ApplyTop rewrites with the rules labeled label at the root only.
func ApplyTop(label string) *Strategy {
	return &Strategy{Op: OpApply, Label: label, Top: true, Pattern: term.None}
}

// All rewrites with any rule, at any position.
func All() *Strategy { return Apply("") }

// Seq runs a, then b on every result of a. Longer sequences nest to the right.
func Seq(a, b *Strategy, more ...*Strategy) *Strategy {
	if len(more) > 0 {
		b = Seq(b, more[0], more[1:]...)
	}
	return &Strategy{Op: OpSeq, Subs: []*Strategy{a, b}, Pattern: term.None}
}

// Union explores every alternative.
func Union(alts ...*Strategy) *Strategy {
	return &Strategy{Op: OpUnion, Subs: alts, Pattern: term.None}
}

// Iterate applies s zero or more times.
func Iterate(s *Strategy) *Strategy {
	return &Strategy{Op: OpIterate, Subs: []*Strategy{s}, Pattern: term.None}
}

// Plus applies s one or more times. Its second child is the iteration it unfolds into.
func Plus(s *Strategy) *Strategy {
	return &Strategy{Op: OpPlus, Subs: []*Strategy{s, Iterate(s)}, Pattern: term.None}
}

// Normalize applies s until it no longer applies.
func Normalize(s *Strategy) *Strategy {
	return &Strategy{Op: OpNormalize, Subs: []*Strategy{s}, Pattern: term.None}
}

// Match tests the pattern at the root of the term.
func Match(pattern term.ID) *Strategy {
	return &Strategy{Op: OpTest, Pattern: pattern}
}

// AMatch tests the pattern against every subterm.
func AMatch(pattern term.ID) *Strategy {
	return &Strategy{Op: OpTest, Pattern: pattern, Anywhere: true}
}

// Cond runs then on the results of c, or els on the input when c has no result.
func Cond(c, then, els *Strategy) *Strategy {
	return &Strategy{Op: OpCond, Subs: []*Strategy{c, then, els}, Pattern: term.None}
}

// OrElse runs b only when a has no result.
func OrElse(a, b *Strategy) *Strategy {
	return &Strategy{Op: OpOrElse, Subs: []*Strategy{a, Idle(), b}, Pattern: term.None}
}

// Not succeeds with the input when s has no result.
func Not(s *Strategy) *Strategy {
	return &Strategy{Op: OpNot, Subs: []*Strategy{s, Fail(), Idle()}, Pattern: term.None}
}

// Try runs s, or keeps the input when s has no result.
func Try(s *Strategy) *Strategy {
	return &Strategy{Op: OpTry, Subs: []*Strategy{s, Idle(), Idle()}, Pattern: term.None}
}

// One keeps only the first result of s.
func One(s *Strategy) *Strategy {
	return &Strategy{Op: OpOne, Subs: []*Strategy{s}, Pattern: term.None}
}

// Call runs the named strategy definition.
func Call(name string) *Strategy {
	return &Strategy{Op: OpCall, Label: name, Pattern: term.None}
}

// IsConditional reports whether the node behaves like c ? then : else.
// Cond, OrElse, Not and Try all keep their branches in Subs[0:3].
func (s *Strategy) IsConditional() bool {
	switch s.Op {
	case OpCond, OpOrElse, OpNot, OpTry:
		return true
	}
	return false
}

// Walk visits s and its sub-expressions in pre-order.
func (s *Strategy) Walk(fn func(*Strategy)) {
	fn(s)
	switch s.Op {
	case OpPlus:
		s.Subs[0].Walk(fn)
		return
	case OpOrElse:
		s.Subs[0].Walk(fn)
		s.Subs[2].Walk(fn)
		return
	case OpNot, OpTry:
		s.Subs[0].Walk(fn)
		return
	}
	for _, sub := range s.Subs {
		sub.Walk(fn)
	}
}

// Format prints s in the strategy syntax accepted by ParseStrategy.
func (s *Strategy) Format(store *term.Store) string {
	var sb strings.Builder
	s.format(&sb, store, false)
	return sb.String()
}

func (s *Strategy) format(sb *strings.Builder, store *term.Store, nested bool) {
	open := func() {
		if nested {
			sb.WriteByte('(')
		}
	}
	closeParen := func() {
		if nested {
			sb.WriteByte(')')
		}
	}
	switch s.Op {
	case OpIdle:
		sb.WriteString("idle")
	case OpFail:
		sb.WriteString("fail")
	case OpApply:
		label := s.Label
		if label == "" {
			label = "all"
		}
		if s.Top {
			fmt.Fprintf(sb, "top(%s)", label)
		} else {
			sb.WriteString(label)
		}
	case OpCall:
		sb.WriteString(s.Label)
	case OpTest:
		if s.Anywhere {
			sb.WriteString("amatch ")
		} else {
			sb.WriteString("match ")
		}
		sb.WriteString(store.String(s.Pattern))
	case OpSeq:
		open()
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" ; ")
		s.Subs[1].format(sb, store, s.Subs[1].Op != OpSeq)
		closeParen()
	case OpUnion:
		open()
		for i, alt := range s.Subs {
			if i > 0 {
				sb.WriteString(" | ")
			}
			alt.format(sb, store, true)
		}
		closeParen()
	case OpIterate:
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" *")
	case OpPlus:
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" +")
	case OpNormalize:
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" !")
	case OpCond:
		open()
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" ? ")
		s.Subs[1].format(sb, store, true)
		sb.WriteString(" : ")
		s.Subs[2].format(sb, store, true)
		closeParen()
	case OpOrElse:
		open()
		s.Subs[0].format(sb, store, true)
		sb.WriteString(" or-else ")
		s.Subs[2].format(sb, store, true)
		closeParen()
	case OpNot, OpTry, OpOne:
		sb.WriteString(s.Op.String())
		sb.WriteByte('(')
		s.Subs[0].format(sb, store, false)
		sb.WriteByte(')')
	}
}
