package term

import "strings"

// String prints t in canonical prefix notation: constants by name,
// applications as f(a, b), variables as Name:Sort.
// The output is accepted by Parser.Parse and yields the same ID.
func (s *Store) String(t ID) string {
	if t == None {
		return "<none>"
	}
	var sb strings.Builder
	s.write(&sb, t)
	return sb.String()
}

func (s *Store) write(sb *strings.Builder, t ID) {
	s.mu.RLock()
	n := s.nodes[t]
	s.mu.RUnlock()

	if n.sym == nil {
		sb.WriteString(n.name)
		sb.WriteByte(':')
		sb.WriteString(n.sort.Name)
		return
	}
	sb.WriteString(n.sym.Name)
	if len(n.args) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, a := range n.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		s.write(sb, a)
	}
	sb.WriteByte(')')
}
