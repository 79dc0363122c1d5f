package match

import (
	"cmp"
	"slices"
	"strings"

	"github.com/aretw0/espalier/pkg/term"
)

// Binding maps one variable to a term.
type Binding struct {
	Var   term.ID
	Value term.ID
}

// Substitution is an immutable set of variable bindings produced by a match.
// Bindings enumerate ordered by variable name, then sort name.
type Substitution struct {
	store    *term.Store
	bindings []Binding
	ext      *Extension
}

// NewSubstitution returns an empty substitution over store.
func NewSubstitution(store *term.Store) Substitution {
	return Substitution{store: store}
}

// Len is the number of bound variables.
func (s Substitution) Len() int { return len(s.bindings) }

// Bindings returns the bindings in deterministic order. The slice must not be modified.
func (s Substitution) Bindings() []Binding { return s.bindings }

// Lookup returns the value bound to variable v.
func (s Substitution) Lookup(v term.ID) (term.ID, bool) {
	for _, b := range s.bindings {
		if b.Var == v {
			return b.Value, true
		}
	}
	return term.None, false
}

// LookupName returns the value bound to the variable called name.
func (s Substitution) LookupName(name string) (term.ID, bool) {
	for _, b := range s.bindings {
		if s.store.VarName(b.Var) == name {
			return b.Value, true
		}
	}
	return term.None, false
}

// Bind returns a copy of s with v bound to value. It reports false when v is
// already bound to something else or value does not fit the sort of v.
func (s Substitution) Bind(v, value term.ID) (Substitution, bool) {
	if old, ok := s.Lookup(v); ok {
		return s, old == value
	}
	if !s.store.HasSort(value, s.store.SortOf(v)) {
		return s, false
	}
	next := s
	next.bindings = append(s.bindings[:len(s.bindings):len(s.bindings)], Binding{Var: v, Value: value})
	next.normalize()
	return next, true
}

// Extension returns the unmatched context of an extension match, or nil.
func (s Substitution) Extension() *Extension { return s.ext }

// Apply instantiates t. Unbound variables are left in place.
func (s Substitution) Apply(t term.ID) (term.ID, error) {
	if len(s.bindings) == 0 {
		return t, nil
	}
	return s.store.Substitute(t, s.Lookup)
}

// Map renders the bindings as variable name to printed term.
func (s Substitution) Map() map[string]string {
	out := make(map[string]string, len(s.bindings))
	for _, b := range s.bindings {
		out[s.store.VarName(b.Var)] = s.store.String(b.Value)
	}
	return out
}

func (s Substitution) String() string {
	if len(s.bindings) == 0 {
		return "empty substitution"
	}
	parts := make([]string, len(s.bindings))
	for i, b := range s.bindings {
		parts[i] = s.store.String(b.Var) + " --> " + s.store.String(b.Value)
	}
	return strings.Join(parts, "\n")
}

func (s *Substitution) normalize() {
	st := s.store
	slices.SortFunc(s.bindings, func(a, b Binding) int {
		if c := cmp.Compare(st.VarName(a.Var), st.VarName(b.Var)); c != 0 {
			return c
		}
		return cmp.Compare(st.SortName(a.Var), st.SortName(b.Var))
	})
}

// Extension is the part of an associative subject left out of a match:
// the remaining multiset for AC symbols, the left and right segments for
// associative ones.
type Extension struct {
	sym   *term.Symbol
	rest  []term.ID
	left  []term.ID
	right []term.ID
}

// Symbol is the associative symbol at the matched position.
func (e *Extension) Symbol() *term.Symbol { return e.sym }

// Rest is the unmatched multiset of an AC match.
func (e *Extension) Rest() []term.ID { return e.rest }

// Left is the unmatched prefix of an associative match.
func (e *Extension) Left() []term.ID { return e.left }

// Right is the unmatched suffix of an associative match.
func (e *Extension) Right() []term.ID { return e.right }

// Empty reports whether the match covered the whole subject.
func (e *Extension) Empty() bool {
	return e == nil || len(e.rest)+len(e.left)+len(e.right) == 0
}

// Rebuild puts replacement back into the unmatched context.
func (e *Extension) Rebuild(store *term.Store, replacement term.ID) (term.ID, error) {
	if e.Empty() {
		return replacement, nil
	}
	var args []term.ID
	if e.sym.IsComm() {
		args = append(append(args, replacement), e.rest...)
	} else {
		args = append(append(append(args, e.left...), replacement), e.right...)
	}
	return store.Intern(e.sym, args...)
}
