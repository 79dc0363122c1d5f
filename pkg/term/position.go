package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Position addresses a subterm: the sequence of argument indexes from the root.
// The empty position is the root itself.
type Position []int

// String renders a position as dot-separated one-based indexes, "top" for the root.
func (p Position) String() string {
	if len(p) == 0 {
		return "top"
	}
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = strconv.Itoa(x + 1)
	}
	return strings.Join(parts, ".")
}

// Child returns the position of argument i below p.
func (p Position) Child(i int) Position {
	out := make(Position, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Subterm returns the subterm of t at pos.
func (s *Store) Subterm(t ID, pos Position) (ID, error) {
	cur := t
	for depth, i := range pos {
		args := s.Args(cur)
		if i < 0 || i >= len(args) {
			return None, fmt.Errorf("position %s is not in the term (depth %d)", pos, depth)
		}
		cur = args[i]
	}
	return cur, nil
}

// Replace returns t with the subterm at pos replaced by sub.
// Only the ancestors along pos are re-interned; every other subterm is shared.
func (s *Store) Replace(t ID, pos Position, sub ID) (ID, error) {
	if len(pos) == 0 {
		return sub, nil
	}
	args := s.Args(t)
	i := pos[0]
	if i < 0 || i >= len(args) {
		return None, fmt.Errorf("position %s is not in the term", pos)
	}
	child, err := s.Replace(args[i], pos[1:], sub)
	if err != nil {
		return None, err
	}
	if child == args[i] {
		return t, nil
	}
	next := make([]ID, len(args))
	copy(next, args)
	next[i] = child
	return s.Intern(s.Symbol(t), next...)
}

// Positions lists the non-variable positions of t in pre-order (root first,
// then arguments left to right).
func (s *Store) Positions(t ID) []Position {
	var out []Position
	var walk func(ID, Position)
	walk = func(x ID, p Position) {
		if s.IsVariable(x) {
			return
		}
		out = append(out, p)
		for i, a := range s.Args(x) {
			walk(a, p.Child(i))
		}
	}
	walk(t, Position{})
	return out
}
