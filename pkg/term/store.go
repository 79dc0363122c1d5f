package term

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/spaolacci/murmur3"
)

// ID is a handle to a canonical term in a Store.
// Two IDs from the same store are equal iff the terms are equal modulo the
// declared structural axioms (assoc, comm, identity).
type ID int32

// None is the zero handle for "no term".
const None ID = -1

type node struct {
	sym    *Symbol // nil for variables
	args   []ID
	name   string // variable name
	sort   *Sort  // least sort, nil when the term only has a kind
	kind   *Kind
	hash   uint64
	ground bool
}

// SortMismatchError describes a construction whose argument kind disagrees with the declaration.
type SortMismatchError struct {
	Symbol   string
	Position int
	Expected string
	Got      string
}

func (e *SortMismatchError) Error() string {
	return fmt.Sprintf("sort mismatch: argument %d of %s has kind %s, expected %s", e.Position+1, e.Symbol, e.Got, e.Expected)
}

// Unwrap lets errors.Is match domain.ErrSortMismatch.
func (e *SortMismatchError) Unwrap() error { return domain.ErrSortMismatch }

// Store is the hash-consed term arena of one signature.
// It is safe for concurrent use; reads take a shared lock.
type Store struct {
	sig *Signature

	mu         sync.RWMutex
	nodes      []node
	buckets    map[uint64][]ID
	identities map[*Symbol]ID
}

// NewStore creates a store over a sealed signature.
func NewStore(sig *Signature) (*Store, error) {
	if !sig.Sealed() {
		return nil, errors.New("signature must be sealed before creating a store")
	}
	s := &Store{
		sig:        sig,
		buckets:    make(map[uint64][]ID),
		identities: make(map[*Symbol]ID),
	}
	for _, sym := range sig.symbols {
		if sym.identity == "" {
			continue
		}
		c, _ := sig.Symbol(sym.identity, 0)
		id, err := s.Intern(c)
		if err != nil {
			return nil, err
		}
		s.identities[sym] = id
	}
	return s, nil
}

// Signature returns the signature of the store.
func (s *Store) Signature() *Signature { return s.sig }

// Len is the number of distinct terms interned so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Const interns a constant by name.
func (s *Store) Const(name string) (ID, error) {
	sym, ok := s.sig.Symbol(name, 0)
	if !ok {
		return None, fmt.Errorf("%w: constant %s", domain.ErrUnknownSymbol, name)
	}
	return s.Intern(sym)
}

// Apply interns name(args...) resolving the symbol by name and argument count.
func (s *Store) Apply(name string, args ...ID) (ID, error) {
	sym, ok := s.sig.Lookup(name, len(args))
	if !ok {
		return None, fmt.Errorf("%w: %s/%d", domain.ErrUnknownSymbol, name, len(args))
	}
	return s.Intern(sym, args...)
}

// Intern returns the canonical node for sym(args...).
// It fails with a SortMismatchError when an argument's kind disagrees with the
// declared argument kind; nothing is added to the store in that case.
func (s *Store) Intern(sym *Symbol, args ...ID) (ID, error) {
	if sym.IsAssoc() {
		if len(args) < 2 {
			return None, fmt.Errorf("%w: %s takes at least 2 arguments, got %d", domain.ErrArity, sym.Name, len(args))
		}
	} else if len(args) != sym.arity {
		return None, fmt.Errorf("%w: %s takes %d arguments, got %d", domain.ErrArity, sym.Name, sym.arity, len(args))
	}

	s.mu.RLock()
	for i, a := range args {
		if a < 0 || int(a) >= len(s.nodes) {
			s.mu.RUnlock()
			return None, fmt.Errorf("argument %d of %s is not a term of this store", i+1, sym.Name)
		}
		if got, want := s.nodes[a].kind, sym.DomainKind(i); got != want {
			s.mu.RUnlock()
			return None, &SortMismatchError{Symbol: sym.Name, Position: i, Expected: want.String(), Got: got.String()}
		}
	}
	canon, collapsed := s.canonicalLocked(sym, args)
	if collapsed != None {
		s.mu.RUnlock()
		return collapsed, nil
	}
	h := hashApp(sym, canon)
	if id, ok := s.lookupLocked(h, sym, canon); ok {
		s.mu.RUnlock()
		return id, nil
	}
	n := node{sym: sym, args: canon, kind: sym.rangeKind, hash: h, ground: true}
	argSorts := make([]*Sort, len(canon))
	for i, a := range canon {
		argSorts[i] = s.nodes[a].sort
		n.ground = n.ground && s.nodes[a].ground
	}
	n.sort = s.sortOfApp(sym, argSorts)
	s.mu.RUnlock()

	return s.insert(n), nil
}

// Variable interns the variable name:sort.
func (s *Store) Variable(name string, sort *Sort) (ID, error) {
	if name == "" {
		return None, fmt.Errorf("%w: empty variable name", domain.ErrParse)
	}
	if sort == nil || sort.kind == nil {
		return None, fmt.Errorf("%w: variable %s has no sort", domain.ErrUnknownSort, name)
	}
	h := hashVar(name, sort)
	s.mu.RLock()
	for _, id := range s.buckets[h] {
		n := &s.nodes[id]
		if n.sym == nil && n.name == name && n.sort == sort {
			s.mu.RUnlock()
			return id, nil
		}
	}
	s.mu.RUnlock()
	return s.insert(node{name: name, sort: sort, kind: sort.kind, hash: h}), nil
}

// insert adds n unless an equal node was inserted concurrently.
func (s *Store) insert(n node) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.buckets[n.hash] {
		o := &s.nodes[id]
		if o.sym == n.sym && o.name == n.name && o.sort == n.sort && slices.Equal(o.args, n.args) {
			return id
		}
	}
	id := ID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.buckets[n.hash] = append(s.buckets[n.hash], id)
	return id
}

func (s *Store) lookupLocked(h uint64, sym *Symbol, args []ID) (ID, bool) {
	for _, id := range s.buckets[h] {
		n := &s.nodes[id]
		if n.sym == sym && slices.Equal(n.args, args) {
			return id, true
		}
	}
	return None, false
}

// canonicalLocked flattens associative arguments, removes identities and sorts
// commutative arguments. A result other than None means the application
// collapsed to an existing term.
func (s *Store) canonicalLocked(sym *Symbol, args []ID) ([]ID, ID) {
	out := make([]ID, 0, len(args))
	if sym.IsAssoc() {
		for _, a := range args {
			if s.nodes[a].sym == sym {
				out = append(out, s.nodes[a].args...)
			} else {
				out = append(out, a)
			}
		}
	} else {
		out = append(out, args...)
	}

	if idTerm, ok := s.identities[sym]; ok {
		kept := out[:0:0]
		for _, a := range out {
			if a != idTerm {
				kept = append(kept, a)
			}
		}
		switch {
		case len(kept) == 0:
			return nil, idTerm
		case len(kept) == 1:
			return nil, kept[0]
		case len(kept) >= 2 && (sym.IsAssoc() || len(kept) == sym.arity):
			out = kept
		}
	}

	if sym.IsComm() {
		slices.SortStableFunc(out, s.compareLocked)
	}
	return out, None
}

func (s *Store) sortOfApp(sym *Symbol, argSorts []*Sort) *Sort {
	if !sym.IsAssoc() || len(argSorts) == 2 {
		return s.sig.resultSort(sym, argSorts)
	}
	acc := argSorts[0]
	for _, next := range argSorts[1:] {
		acc = s.sig.resultSort(sym, []*Sort{acc, next})
		if acc == nil {
			return nil
		}
	}
	return acc
}

func hashApp(sym *Symbol, args []ID) uint64 {
	buf := make([]byte, 0, 4*(len(args)+2))
	buf = append(buf, 'a')
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sym.id))
	for _, a := range args {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(a))
	}
	return murmur3.Sum64(buf)
}

func hashVar(name string, sort *Sort) uint64 {
	buf := make([]byte, 0, len(name)+6)
	buf = append(buf, 'v')
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sort.index))
	buf = append(buf, name...)
	return murmur3.Sum64(buf)
}

// Symbol returns the top symbol of t, or nil for variables.
func (s *Store) Symbol(t ID) *Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].sym
}

// Args returns the canonical arguments of t. The slice must not be modified.
func (s *Store) Args(t ID) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].args
}

// IsVariable reports whether t is a variable.
func (s *Store) IsVariable(t ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].sym == nil
}

// VarName returns the name of variable t, or "" when t is not a variable.
func (s *Store) VarName(t ID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].name
}

// SortOf returns the least sort of t, or nil when t only has a kind.
func (s *Store) SortOf(t ID) *Sort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].sort
}

// KindOf returns the kind of t.
func (s *Store) KindOf(t ID) *Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].kind
}

// SortName prints the least sort of t, or its kind when it has no sort.
func (s *Store) SortName(t ID) string {
	if srt := s.SortOf(t); srt != nil {
		return srt.Name
	}
	return s.KindOf(t).String()
}

// IsGround reports whether t contains no variables.
func (s *Store) IsGround(t ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[t].ground
}

// HasSort reports whether the least sort of t is below srt.
func (s *Store) HasSort(t ID, srt *Sort) bool {
	return s.sig.Leq(s.SortOf(t), srt)
}

// IdentityOf returns the interned identity element of sym.
func (s *Store) IdentityOf(sym *Symbol) (ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[sym]
	return id, ok
}

// Equal reports whether a and b denote the same term.
func (s *Store) Equal(a, b ID) bool { return a == b }

// Compare is a total structural order on terms, independent of interning history.
// Applications sort before variables; applications by symbol name, arity,
// argument count, then arguments; variables by name then sort.
func (s *Store) Compare(a, b ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compareLocked(a, b)
}

func (s *Store) compareLocked(a, b ID) int {
	if a == b {
		return 0
	}
	na, nb := &s.nodes[a], &s.nodes[b]
	switch {
	case na.sym != nil && nb.sym == nil:
		return -1
	case na.sym == nil && nb.sym != nil:
		return 1
	case na.sym == nil:
		if c := compareStrings(na.name, nb.name); c != 0 {
			return c
		}
		return compareStrings(na.sort.Name, nb.sort.Name)
	}
	if c := compareStrings(na.sym.Name, nb.sym.Name); c != 0 {
		return c
	}
	if na.sym.arity != nb.sym.arity {
		return na.sym.arity - nb.sym.arity
	}
	if len(na.args) != len(nb.args) {
		return len(na.args) - len(nb.args)
	}
	for i := range na.args {
		if c := s.compareLocked(na.args[i], nb.args[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Vars returns the distinct variables of t in order of first occurrence.
func (s *Store) Vars(t ID) []ID {
	var out []ID
	seen := make(map[ID]bool)
	var walk func(ID)
	walk = func(x ID) {
		if s.IsGround(x) {
			return
		}
		if s.IsVariable(x) {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
			return
		}
		for _, a := range s.Args(x) {
			walk(a)
		}
	}
	walk(t)
	return out
}

// Substitute rebuilds t replacing each variable v for which lookup returns ok.
// Unaffected subterms are shared, not copied.
func (s *Store) Substitute(t ID, lookup func(ID) (ID, bool)) (ID, error) {
	if s.IsGround(t) {
		return t, nil
	}
	if s.IsVariable(t) {
		if v, ok := lookup(t); ok {
			return v, nil
		}
		return t, nil
	}
	args := s.Args(t)
	var next []ID
	for i, a := range args {
		b, err := s.Substitute(a, lookup)
		if err != nil {
			return None, err
		}
		if b != a && next == nil {
			next = make([]ID, len(args))
			copy(next, args[:i])
		}
		if next != nil {
			next[i] = b
		}
	}
	if next == nil {
		return t, nil
	}
	return s.Intern(s.Symbol(t), next...)
}
