package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// overlay contains dynamic state data to highlight on the graph.
type overlay struct {
	path    []int
	current int
}

// Option configures Mermaid.
type Option func(*overlay)

// WithPath highlights the states of a path; its last state is the current one.
func WithPath(path []int) Option {
	return func(o *overlay) {
		o.path = path
		if len(path) > 0 {
			o.current = path[len(path)-1]
		}
	}
}

// Mermaid produces a Mermaid flowchart of an explored search graph.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Solution: ([Stadium])
// - Default: [Rectangle]
// Each state links to its parent, labelled with the rule that produced it.
func Mermaid(snap *domain.Snapshot, opts ...Option) string {
	o := &overlay{current: domain.NoParent}
	for _, opt := range opts {
		opt(o)
	}

	solutions := make(map[int]bool, len(snap.Solutions))
	for _, sol := range snap.Solutions {
		solutions[sol.StateNr] = true
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range snap.States {
		opener, closer := "[", "]"
		switch {
		case st.Parent == domain.NoParent:
			opener, closer = "((", "))"
		case solutions[st.Nr]:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%d: %s\"%s\n", nodeID(st.Nr), opener, st.Nr, escapeLabel(st.Term), closer))

		if st.Parent == domain.NoParent {
			continue
		}
		arrow := "-->"
		if st.Transition != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(st.Transition))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", nodeID(st.Parent), arrow, nodeID(st.Nr)))
	}

	if len(o.path) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, nr := range o.path {
			if nr == o.current {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeID(nr)))
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(o.current)))
	}

	return sb.String()
}

func nodeID(nr int) string {
	return fmt.Sprintf("s%d", nr)
}

// escapeLabel keeps quotes and brackets in terms from closing the Mermaid label.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
