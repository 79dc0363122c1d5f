package term

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Theory is the set of equational attributes of a symbol.
type Theory uint8

const (
	// Free symbols have no equational attributes.
	Free Theory = 0
	// Assoc marks an associative binary symbol; its terms are stored flattened.
	Assoc Theory = 1 << iota
	// Comm marks a commutative binary symbol; its arguments are stored sorted.
	Comm
	// AC is associative and commutative.
	AC = Assoc | Comm
)

func (t Theory) String() string {
	switch t {
	case Free:
		return "free"
	case Assoc:
		return "assoc"
	case Comm:
		return "comm"
	case AC:
		return "assoc comm"
	}
	return fmt.Sprintf("Theory(%d)", uint8(t))
}

// Sort is a typing annotation within a kind.
type Sort struct {
	Name  string
	index int
	kind  *Kind
}

// Kind returns the connected component of the subsort graph containing s.
func (s *Sort) Kind() *Kind { return s.kind }

func (s *Sort) String() string { return s.Name }

// Kind is an equivalence class of sorts related by the subsort order.
type Kind struct {
	index int
	sorts []*Sort
	name  string
}

// Sorts returns the sorts of the kind in declaration order.
func (k *Kind) Sorts() []*Sort { return k.sorts }

// String prints the kind as its maximal sorts between brackets, e.g. "[Nat]".
func (k *Kind) String() string { return k.name }

// Decl is one declaration of an operator: domain sorts to a range sort.
type Decl struct {
	Domain []*Sort
	Range  *Sort
}

// Symbol is an operator of the signature.
// Symbols are owned by the Signature and compared by pointer.
type Symbol struct {
	Name     string
	id       int
	arity    int
	decls    []Decl
	theory   Theory
	identity string

	domainKinds []*Kind
	rangeKind   *Kind
}

// Arity is the declared number of arguments (2 for associative symbols).
func (s *Symbol) Arity() int { return s.arity }

// Theory returns the equational attributes of the symbol.
func (s *Symbol) Theory() Theory { return s.theory }

// IsAssoc reports whether the symbol is associative.
func (s *Symbol) IsAssoc() bool { return s.theory&Assoc != 0 }

// IsComm reports whether the symbol is commutative.
func (s *Symbol) IsComm() bool { return s.theory&Comm != 0 }

// Identity returns the name of the identity constant, if any.
func (s *Symbol) Identity() (string, bool) { return s.identity, s.identity != "" }

// Decls returns the declarations of the symbol.
func (s *Symbol) Decls() []Decl { return s.decls }

// RangeKind is the kind of every term headed by the symbol.
func (s *Symbol) RangeKind() *Kind { return s.rangeKind }

// DomainKind returns the kind expected at argument i.
func (s *Symbol) DomainKind(i int) *Kind {
	if s.IsAssoc() {
		return s.domainKinds[0]
	}
	return s.domainKinds[i]
}

func (s *Symbol) String() string { return s.Name }

// OpAttributes are the optional attributes of an operator declaration.
type OpAttributes struct {
	Assoc bool   `yaml:"assoc" json:"assoc" mapstructure:"assoc"`
	Comm  bool   `yaml:"comm" json:"comm" mapstructure:"comm"`
	ID    string `yaml:"id" json:"id" mapstructure:"id"`
}

// Theory returns the theory encoded by the attributes.
func (a OpAttributes) Theory() Theory {
	var t Theory
	if a.Assoc {
		t |= Assoc
	}
	if a.Comm {
		t |= Comm
	}
	return t
}

type symbolKey struct {
	name  string
	arity int
}

// Signature holds sorts, the subsort order, kinds and symbols.
// It is mutable until Seal is called and read-only afterwards.
type Signature struct {
	sorts     []*Sort
	sortIndex map[string]*Sort
	subsorts  [][2]int
	kinds     []*Kind
	leq       [][]bool

	symbols     []*Symbol
	symbolIndex map[symbolKey]*Symbol

	sealed bool
}

// NewSignature creates an empty signature.
func NewSignature() *Signature {
	return &Signature{
		sortIndex:   make(map[string]*Sort),
		symbolIndex: make(map[symbolKey]*Symbol),
	}
}

// AddSort declares a sort. Declaring an existing sort is a no-op.
func (sig *Signature) AddSort(name string) (*Sort, error) {
	if sig.sealed {
		return nil, fmt.Errorf("signature is sealed")
	}
	if name == "" || strings.ContainsAny(name, "(),: \t\n[]") {
		return nil, fmt.Errorf("%w: invalid sort name %q", domain.ErrInvalidModule, name)
	}
	if s, ok := sig.sortIndex[name]; ok {
		return s, nil
	}
	s := &Sort{Name: name, index: len(sig.sorts)}
	sig.sorts = append(sig.sorts, s)
	sig.sortIndex[name] = s
	return s, nil
}

// AddSubsort declares sub < super. Both sorts must exist.
func (sig *Signature) AddSubsort(sub, super string) error {
	if sig.sealed {
		return fmt.Errorf("signature is sealed")
	}
	a, ok := sig.sortIndex[sub]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSort, sub)
	}
	b, ok := sig.sortIndex[super]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSort, super)
	}
	sig.subsorts = append(sig.subsorts, [2]int{a.index, b.index})
	return nil
}

// AddOp declares an operator. Repeating a declaration with the same name and arity
// adds an overload (subsort polymorphism); the attributes must agree.
func (sig *Signature) AddOp(name string, domainSorts []string, rangeSort string, attrs OpAttributes) (*Symbol, error) {
	if sig.sealed {
		return nil, fmt.Errorf("signature is sealed")
	}
	if name == "" || strings.ContainsAny(name, "(),: \t\n") {
		return nil, fmt.Errorf("%w: invalid operator name %q", domain.ErrInvalidModule, name)
	}

	decl := Decl{Domain: make([]*Sort, len(domainSorts))}
	for i, sn := range domainSorts {
		s, ok := sig.sortIndex[sn]
		if !ok {
			return nil, fmt.Errorf("%w: %s in declaration of %s", domain.ErrUnknownSort, sn, name)
		}
		decl.Domain[i] = s
	}
	r, ok := sig.sortIndex[rangeSort]
	if !ok {
		return nil, fmt.Errorf("%w: %s in declaration of %s", domain.ErrUnknownSort, rangeSort, name)
	}
	decl.Range = r

	theory := attrs.Theory()
	if theory != Free && len(domainSorts) != 2 {
		return nil, fmt.Errorf("%w: %s must be binary to be %s", domain.ErrInvalidModule, name, theory)
	}
	if attrs.ID != "" && theory&Assoc == 0 && theory&Comm == 0 {
		return nil, fmt.Errorf("%w: identity of %s requires assoc or comm", domain.ErrInvalidModule, name)
	}

	key := symbolKey{name: name, arity: len(domainSorts)}
	if sym, ok := sig.symbolIndex[key]; ok {
		if sym.theory != theory || sym.identity != attrs.ID {
			return nil, fmt.Errorf("%w: overload of %s changes its attributes", domain.ErrInvalidModule, name)
		}
		sym.decls = append(sym.decls, decl)
		return sym, nil
	}

	sym := &Symbol{
		Name:     name,
		id:       len(sig.symbols),
		arity:    len(domainSorts),
		decls:    []Decl{decl},
		theory:   theory,
		identity: attrs.ID,
	}
	sig.symbols = append(sig.symbols, sym)
	sig.symbolIndex[key] = sym
	return sym, nil
}

// Seal computes kinds and the subsort closure and validates every declaration.
func (sig *Signature) Seal() error {
	if sig.sealed {
		return nil
	}
	n := len(sig.sorts)

	// Reflexive-transitive closure of the subsort relation.
	leq := make([][]bool, n)
	for i := range leq {
		leq[i] = make([]bool, n)
		leq[i][i] = true
	}
	for _, e := range sig.subsorts {
		leq[e[0]][e[1]] = true
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !leq[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if leq[k][j] {
					leq[i][j] = true
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && leq[i][j] && leq[j][i] {
				return fmt.Errorf("%w: subsort cycle between %s and %s", domain.ErrInvalidModule, sig.sorts[i].Name, sig.sorts[j].Name)
			}
		}
	}
	sig.leq = leq

	// Kinds are the connected components of the (undirected) subsort graph.
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, e := range sig.subsorts {
		ra, rb := find(e[0]), find(e[1])
		if ra != rb {
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}
	byRoot := make(map[int]*Kind)
	for _, s := range sig.sorts {
		root := find(s.index)
		k, ok := byRoot[root]
		if !ok {
			k = &Kind{index: len(sig.kinds)}
			byRoot[root] = k
			sig.kinds = append(sig.kinds, k)
		}
		k.sorts = append(k.sorts, s)
		s.kind = k
	}
	for _, k := range sig.kinds {
		var tops []string
		for _, s := range k.sorts {
			maximal := true
			for _, o := range k.sorts {
				if o != s && leq[s.index][o.index] {
					maximal = false
					break
				}
			}
			if maximal {
				tops = append(tops, s.Name)
			}
		}
		sort.Strings(tops)
		k.name = "[" + strings.Join(tops, ",") + "]"
	}

	for _, sym := range sig.symbols {
		if err := sig.checkSymbol(sym); err != nil {
			return err
		}
	}
	sig.sealed = true
	return nil
}

func (sig *Signature) checkSymbol(sym *Symbol) error {
	first := sym.decls[0]
	sym.rangeKind = first.Range.kind
	sym.domainKinds = make([]*Kind, len(first.Domain))
	for i, s := range first.Domain {
		sym.domainKinds[i] = s.kind
	}
	for _, d := range sym.decls[1:] {
		if d.Range.kind != sym.rangeKind {
			return fmt.Errorf("%w: overloads of %s have different range kinds", domain.ErrInvalidModule, sym.Name)
		}
		for i, s := range d.Domain {
			if s.kind != sym.domainKinds[i] {
				return fmt.Errorf("%w: overloads of %s have different kinds at argument %d", domain.ErrInvalidModule, sym.Name, i+1)
			}
		}
	}
	if sym.IsAssoc() {
		if sym.domainKinds[0] != sym.rangeKind || sym.domainKinds[1] != sym.rangeKind {
			return fmt.Errorf("%w: associative %s must take and return the same kind", domain.ErrInvalidModule, sym.Name)
		}
	}
	if sym.IsComm() && sym.domainKinds[0] != sym.domainKinds[1] {
		return fmt.Errorf("%w: commutative %s must take arguments of one kind", domain.ErrInvalidModule, sym.Name)
	}
	if sym.identity != "" {
		id, ok := sig.symbolIndex[symbolKey{name: sym.identity, arity: 0}]
		if !ok {
			return fmt.Errorf("%w: identity %s of %s is not a constant", domain.ErrInvalidModule, sym.identity, sym.Name)
		}
		if id.decls[0].Range.kind != sym.rangeKind {
			return fmt.Errorf("%w: identity %s of %s has the wrong kind", domain.ErrInvalidModule, sym.identity, sym.Name)
		}
	}
	return nil
}

// Sealed reports whether Seal has completed.
func (sig *Signature) Sealed() bool { return sig.sealed }

// Sort looks up a sort by name.
func (sig *Signature) Sort(name string) (*Sort, bool) {
	s, ok := sig.sortIndex[name]
	return s, ok
}

// Sorts returns all sorts in declaration order.
func (sig *Signature) Sorts() []*Sort { return sig.sorts }

// Kinds returns all kinds, available after Seal.
func (sig *Signature) Kinds() []*Kind { return sig.kinds }

// Symbols returns all symbols in declaration order.
func (sig *Signature) Symbols() []*Symbol { return sig.symbols }

// Leq reports whether a is a subsort of (or equal to) b.
func (sig *Signature) Leq(a, b *Sort) bool {
	if a == nil || b == nil {
		return false
	}
	return sig.leq[a.index][b.index]
}

// Symbol looks up an operator by name and arity.
func (sig *Signature) Symbol(name string, arity int) (*Symbol, bool) {
	sym, ok := sig.symbolIndex[symbolKey{name: name, arity: arity}]
	return sym, ok
}

// Lookup resolves an operator for an application with nargs arguments.
// Associative binary symbols accept any number of arguments from two on,
// since their terms are stored flattened.
func (sig *Signature) Lookup(name string, nargs int) (*Symbol, bool) {
	if sym, ok := sig.Symbol(name, nargs); ok {
		return sym, true
	}
	if nargs > 2 {
		if sym, ok := sig.Symbol(name, 2); ok && sym.IsAssoc() {
			return sym, true
		}
	}
	return nil, false
}

// resultSort picks the least range among declarations applicable to the argument sorts.
// A nil result means the application only has a kind.
func (sig *Signature) resultSort(sym *Symbol, argSorts []*Sort) *Sort {
	var best *Sort
	for _, d := range sym.decls {
		if len(d.Domain) != len(argSorts) {
			continue
		}
		applies := true
		for i, s := range argSorts {
			if !sig.Leq(s, d.Domain[i]) {
				applies = false
				break
			}
		}
		if !applies {
			continue
		}
		if best == nil || sig.Leq(d.Range, best) {
			best = d.Range
		}
	}
	return best
}
