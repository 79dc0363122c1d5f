package match

import (
	"github.com/aretw0/espalier/pkg/term"
)

// Matcher matches patterns against subjects modulo the equational attributes
// of the store's symbols.
type Matcher struct {
	store *term.Store
}

// NewMatcher creates a matcher over store.
func NewMatcher(store *term.Store) *Matcher {
	return &Matcher{store: store}
}

// Option configures a single match.
type Option func(*config)

type config struct {
	extension bool
	initial   *Substitution
}

// WithExtension lets an associative pattern match part of an associative subject
// headed by the same symbol. The unmatched part is reported by Substitution.Extension.
func WithExtension() Option {
	return func(c *config) {
		c.extension = true
	}
}

// WithBindings starts matching from existing bindings.
func WithBindings(s Substitution) Option {
	return func(c *config) {
		c.initial = &s
	}
}

// Match returns the lazy sequence of substitutions that instantiate pattern to subject.
func (m *Matcher) Match(pattern, subject term.ID, opts ...Option) *Matches {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	start := frame{sub: NewSubstitution(m.store)}
	if cfg.initial != nil {
		start.sub = *cfg.initial
		start.sub.ext = nil
	}

	st := m.store
	g := &goal{kind: goalEq, pattern: pattern, subject: subject}
	if cfg.extension && !st.IsVariable(pattern) && !st.IsVariable(subject) {
		sym := st.Symbol(pattern)
		if sym.IsAssoc() && st.Symbol(subject) == sym {
			subj := st.Args(subject)
			if sym.IsComm() {
				g = &goal{kind: goalAC, sym: sym, pats: orderPatterns(st, st.Args(pattern)), subj: subj, ext: true}
			} else {
				g = &goal{kind: goalAssoc, sym: sym, pats: st.Args(pattern), subj: subj, ext: true}
			}
		}
	}
	start.goals = g
	return &Matches{m: m, stack: []choice{single(start)}}
}

// First returns the first match, if any.
func (m *Matcher) First(pattern, subject term.ID, opts ...Option) (Substitution, bool) {
	return m.Match(pattern, subject, opts...).Next()
}

// Matches is a lazy, deterministic sequence of substitutions.
// It holds an explicit stack of choice points; each call to Next resumes
// from the most recent one.
type Matches struct {
	m     *Matcher
	stack []choice
	err   error
}

// Next returns the next substitution, or false when the sequence is exhausted.
func (it *Matches) Next() (Substitution, bool) {
	for len(it.stack) > 0 && it.err == nil {
		top := it.stack[len(it.stack)-1]
		f, ok := top()
		if !ok {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		if f.goals == nil {
			return f.result(), true
		}
		it.stack = append(it.stack, it.expand(f))
	}
	it.stack = nil
	return Substitution{}, false
}

// Err reports a store failure that ended the sequence early.
func (it *Matches) Err() error { return it.err }

// All drains the sequence.
func (it *Matches) All() []Substitution {
	var out []Substitution
	for {
		s, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, s)
	}
}

type goalKind uint8

const (
	goalEq goalKind = iota
	goalAC
	goalAssoc
)

// goal is one pending matching problem. Goals form an immutable linked list
// shared between frames.
type goal struct {
	kind    goalKind
	pattern term.ID
	subject term.ID

	sym     *term.Symbol
	pats    []term.ID
	subj    []term.ID
	ext     bool
	started bool
	left    []term.ID

	next *goal
}

type frame struct {
	sub   Substitution
	goals *goal
	ext   *Extension
}

func (f frame) result() Substitution {
	s := f.sub
	s.ext = f.ext
	return s
}

func (f frame) push(g *goal) frame {
	g.next = f.goals
	f.goals = g
	return f
}

// choice yields the alternatives of one choice point in order.
type choice func() (frame, bool)

func single(f frame) choice {
	done := false
	return func() (frame, bool) {
		if done {
			return frame{}, false
		}
		done = true
		return f, true
	}
}

func fail() (frame, bool) { return frame{}, false }

func (it *Matches) expand(f frame) choice {
	g := f.goals
	f.goals = g.next
	switch g.kind {
	case goalAC:
		return it.expandAC(f, g)
	case goalAssoc:
		return it.expandAssoc(f, g)
	}
	return it.expandEq(f, g.pattern, g.subject)
}

func (it *Matches) bind(f frame, v, value term.ID) (frame, bool) {
	sub, ok := f.sub.Bind(v, value)
	if !ok {
		return f, false
	}
	f.sub = sub
	return f, true
}

func (it *Matches) expandEq(f frame, p, s term.ID) choice {
	st := it.m.store
	if st.IsGround(p) {
		if p == s {
			return single(f)
		}
		return fail
	}
	if st.IsVariable(p) {
		if nf, ok := it.bind(f, p, s); ok {
			return single(nf)
		}
		return fail
	}

	sym := st.Symbol(p)
	pargs := st.Args(p)
	if !st.IsVariable(s) && st.Symbol(s) == sym {
		sargs := st.Args(s)
		switch {
		case sym.IsAssoc() && sym.IsComm():
			return single(f.push(&goal{kind: goalAC, sym: sym, pats: orderPatterns(st, pargs), subj: sargs}))
		case sym.IsAssoc():
			return single(f.push(&goal{kind: goalAssoc, sym: sym, pats: pargs, subj: sargs}))
		case sym.IsComm():
			return orientations(f, pargs, sargs[0], sargs[1])
		}
		for i := len(pargs) - 1; i >= 0; i-- {
			f = f.push(&goal{kind: goalEq, pattern: pargs[i], subject: sargs[i]})
		}
		return single(f)
	}

	// A subject not headed by sym can still match when one side collapses to the identity.
	idTerm, ok := st.IdentityOf(sym)
	if !ok {
		return fail
	}
	var seq []term.ID
	if s != idTerm {
		seq = []term.ID{s}
	}
	switch {
	case sym.IsAssoc() && sym.IsComm():
		return single(f.push(&goal{kind: goalAC, sym: sym, pats: orderPatterns(st, pargs), subj: seq}))
	case sym.IsAssoc():
		return single(f.push(&goal{kind: goalAssoc, sym: sym, pats: pargs, subj: seq}))
	}
	return orientations(f, pargs, s, idTerm)
}

// orientations matches a commutative binary pattern both ways round.
func orientations(f frame, pargs []term.ID, s0, s1 term.ID) choice {
	straight := f.push(&goal{kind: goalEq, pattern: pargs[1], subject: s1}).
		push(&goal{kind: goalEq, pattern: pargs[0], subject: s0})
	if s0 == s1 {
		return single(straight)
	}
	swapped := f.push(&goal{kind: goalEq, pattern: pargs[1], subject: s0}).
		push(&goal{kind: goalEq, pattern: pargs[0], subject: s1})
	alts := []frame{straight, swapped}
	return func() (frame, bool) {
		if len(alts) == 0 {
			return frame{}, false
		}
		next := alts[0]
		alts = alts[1:]
		return next, true
	}
}

// orderPatterns puts ground arguments first, then other non-variable
// arguments, then variables, keeping canonical order within each group.
func orderPatterns(st *term.Store, args []term.ID) []term.ID {
	out := make([]term.ID, 0, len(args))
	for _, a := range args {
		if st.IsGround(a) {
			out = append(out, a)
		}
	}
	for _, a := range args {
		if !st.IsGround(a) && !st.IsVariable(a) {
			out = append(out, a)
		}
	}
	for _, a := range args {
		if st.IsVariable(a) {
			out = append(out, a)
		}
	}
	return out
}

// flatten returns the arguments value contributes under sym.
func flatten(st *term.Store, sym *term.Symbol, value term.ID) []term.ID {
	if idTerm, ok := st.IdentityOf(sym); ok && value == idTerm {
		return nil
	}
	if !st.IsVariable(value) && st.Symbol(value) == sym {
		return st.Args(value)
	}
	return []term.ID{value}
}

// build makes the term sym(args...), collapsing to the identity or a single argument.
func (it *Matches) build(sym *term.Symbol, args []term.ID) (term.ID, bool) {
	st := it.m.store
	switch len(args) {
	case 0:
		return st.IdentityOf(sym)
	case 1:
		return args[0], true
	}
	t, err := st.Intern(sym, args...)
	if err != nil {
		it.err = err
		return term.None, false
	}
	return t, true
}

func (it *Matches) expandAC(f frame, g *goal) choice {
	st := it.m.store
	if len(g.pats) == 0 {
		if len(g.subj) > 0 && !g.ext {
			return fail
		}
		if g.ext {
			f.ext = &Extension{sym: g.sym, rest: g.subj}
		}
		return single(f)
	}

	p, rest := g.pats[0], g.pats[1:]
	next := func(subj []term.ID) *goal {
		return &goal{kind: goalAC, sym: g.sym, pats: rest, subj: subj, ext: g.ext}
	}

	switch {
	case st.IsGround(p):
		for i, s := range g.subj {
			if s == p {
				return single(f.push(next(without(g.subj, i))))
			}
		}
		return fail

	case !st.IsVariable(p):
		i := 0
		return func() (frame, bool) {
			if i >= len(g.subj) {
				return frame{}, false
			}
			j := i
			// Equal subjects give equal matches; try each distinct one once.
			for i++; i < len(g.subj) && g.subj[i] == g.subj[j]; i++ {
			}
			nf := f.push(next(without(g.subj, j)))
			return nf.push(&goal{kind: goalEq, pattern: p, subject: g.subj[j]}), true
		}
	}

	if v, ok := f.sub.Lookup(p); ok {
		remaining, ok := subtract(g.subj, flatten(st, g.sym, v))
		if !ok {
			return fail
		}
		return single(f.push(next(remaining)))
	}

	if len(rest) == 0 && !g.ext {
		value, ok := it.build(g.sym, g.subj)
		if !ok {
			return fail
		}
		if nf, ok := it.bind(f, p, value); ok {
			return single(nf)
		}
		return fail
	}

	ms := groupSorted(g.subj)
	counts := make([]int, len(ms.vals))
	identityTried := false
	return func() (frame, bool) {
		// The odometer wraps back to zero, so it must not turn again once the
		// identity alternative has been offered.
		for it.err == nil && !identityTried {
			if !ms.advance(counts) {
				identityTried = true
				idTerm, ok := st.IdentityOf(g.sym)
				if !ok {
					return frame{}, false
				}
				if nf, ok := it.bind(f, p, idTerm); ok {
					return nf.push(next(g.subj)), true
				}
				return frame{}, false
			}
			taken, remaining := ms.split(counts)
			value, ok := it.build(g.sym, taken)
			if !ok {
				continue
			}
			if nf, ok := it.bind(f, p, value); ok {
				return nf.push(next(remaining)), true
			}
		}
		return frame{}, false
	}
}

func (it *Matches) expandAssoc(f frame, g *goal) choice {
	st := it.m.store
	if g.ext && !g.started {
		i := 0
		return func() (frame, bool) {
			if i >= len(g.subj) {
				return frame{}, false
			}
			nf := f.push(&goal{kind: goalAssoc, sym: g.sym, pats: g.pats, subj: g.subj[i:], ext: true, started: true, left: g.subj[:i]})
			i++
			return nf, true
		}
	}
	if len(g.pats) == 0 {
		if g.ext {
			f.ext = &Extension{sym: g.sym, left: g.left, right: g.subj}
			return single(f)
		}
		if len(g.subj) == 0 {
			return single(f)
		}
		return fail
	}

	p, rest := g.pats[0], g.pats[1:]
	next := func(subj []term.ID) *goal {
		return &goal{kind: goalAssoc, sym: g.sym, pats: rest, subj: subj, ext: g.ext, started: g.started, left: g.left}
	}

	if !st.IsVariable(p) {
		if len(g.subj) == 0 {
			return fail
		}
		nf := f.push(next(g.subj[1:]))
		return single(nf.push(&goal{kind: goalEq, pattern: p, subject: g.subj[0]}))
	}

	if v, ok := f.sub.Lookup(p); ok {
		vals := flatten(st, g.sym, v)
		if len(vals) > len(g.subj) {
			return fail
		}
		for i, x := range vals {
			if g.subj[i] != x {
				return fail
			}
		}
		return single(f.push(next(g.subj[len(vals):])))
	}

	if len(rest) == 0 && !g.ext {
		value, ok := it.build(g.sym, g.subj)
		if !ok {
			return fail
		}
		if nf, ok := it.bind(f, p, value); ok {
			return single(nf)
		}
		return fail
	}

	n := 0
	return func() (frame, bool) {
		for it.err == nil {
			n++
			if n > len(g.subj) {
				if n > len(g.subj)+1 {
					return frame{}, false
				}
				idTerm, ok := st.IdentityOf(g.sym)
				if !ok {
					return frame{}, false
				}
				if nf, ok := it.bind(f, p, idTerm); ok {
					return nf.push(next(g.subj)), true
				}
				return frame{}, false
			}
			value, ok := it.build(g.sym, g.subj[:n])
			if !ok {
				continue
			}
			if nf, ok := it.bind(f, p, value); ok {
				return nf.push(next(g.subj[n:])), true
			}
		}
		return frame{}, false
	}
}

func without(ids []term.ID, i int) []term.ID {
	out := make([]term.ID, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

// subtract removes every element of vals from ids, reporting false when one is missing.
func subtract(ids, vals []term.ID) ([]term.ID, bool) {
	out := append([]term.ID(nil), ids...)
	for _, v := range vals {
		found := false
		for i, x := range out {
			if x == v {
				out = append(out[:i], out[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// multiset groups a canonically sorted argument list into distinct values with counts.
type multiset struct {
	vals   []term.ID
	counts []int
}

func groupSorted(ids []term.ID) multiset {
	var ms multiset
	for i, x := range ids {
		if i > 0 && ids[i-1] == x {
			ms.counts[len(ms.counts)-1]++
			continue
		}
		ms.vals = append(ms.vals, x)
		ms.counts = append(ms.counts, 1)
	}
	return ms
}

// advance steps the selection vector like an odometer whose first digit turns
// fastest. It reports false after the full multiset has been selected.
func (ms multiset) advance(sel []int) bool {
	for i := range sel {
		if sel[i] < ms.counts[i] {
			sel[i]++
			return true
		}
		sel[i] = 0
	}
	return false
}

func (ms multiset) split(sel []int) (taken, remaining []term.ID) {
	for i, x := range ms.vals {
		for k := 0; k < sel[i]; k++ {
			taken = append(taken, x)
		}
		for k := sel[i]; k < ms.counts[i]; k++ {
			remaining = append(remaining, x)
		}
	}
	return taken, remaining
}
