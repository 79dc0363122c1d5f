package domain

// NoParent marks the root state of a search graph.
const NoParent = -1

// StateRecord is the printable form of one search state.
type StateRecord struct {
	Nr           int    `json:"nr" yaml:"nr"`
	Term         string `json:"term" yaml:"term"`
	Parent       int    `json:"parent" yaml:"parent"`
	Depth        int    `json:"depth" yaml:"depth"`
	Transition   string `json:"transition,omitempty" yaml:"transition,omitempty"`
	Continuation string `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

// SolutionRecord is the printable form of one search result.
type SolutionRecord struct {
	StateNr  int               `json:"state_nr" yaml:"state_nr"`
	Bindings map[string]string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// Snapshot is an exported view of a search session.
// It holds printed terms only, so it can be stored and rendered without the module.
type Snapshot struct {
	SessionID  string           `json:"session_id" yaml:"session_id"`
	Module     string           `json:"module" yaml:"module"`
	Initial    string           `json:"initial" yaml:"initial"`
	SearchType SearchType       `json:"search_type" yaml:"search_type"`
	Pattern    string           `json:"pattern" yaml:"pattern"`
	Strategy   string           `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	MaxDepth   int              `json:"max_depth" yaml:"max_depth"`
	States     []StateRecord    `json:"states" yaml:"states"`
	Solutions  []SolutionRecord `json:"solutions" yaml:"solutions"`
	Exhausted  bool             `json:"exhausted" yaml:"exhausted"`
	// Sealed holds the encrypted snapshot when a store seals its contents.
	Sealed []byte `json:"sealed,omitempty" yaml:"sealed,omitempty"`
}

// Path returns the state numbers from the root to nr (inclusive), following parent links.
// It returns nil if nr is not a state of the snapshot.
func (s *Snapshot) Path(nr int) []int {
	if nr < 0 || nr >= len(s.States) {
		return nil
	}
	var path []int
	for cur := nr; cur != NoParent; cur = s.States[cur].Parent {
		path = append(path, cur)
		if len(path) > len(s.States) {
			return nil // corrupt parent chain
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
