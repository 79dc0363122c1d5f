package domain

import (
	"fmt"
	"strings"
)

// RewriteMode selects the operation of a RewriteRequest.
type RewriteMode string

const (
	ModeReduce   RewriteMode = "reduce"
	ModeRewrite  RewriteMode = "rewrite"
	ModeFRewrite RewriteMode = "frewrite"
	ModeERewrite RewriteMode = "erewrite"
	ModeSRewrite RewriteMode = "srewrite"
)

// ParseRewriteMode reads a mode name, case-insensitive.
func ParseRewriteMode(s string) (RewriteMode, error) {
	m := RewriteMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeReduce, ModeRewrite, ModeFRewrite, ModeERewrite, ModeSRewrite:
		return m, nil
	}
	return "", fmt.Errorf("unknown rewrite mode %q", s)
}

// RewriteRequest asks for one rewriting operation on a term given as text.
type RewriteRequest struct {
	Module string      `json:"module"`
	Term   string      `json:"term"`
	Mode   RewriteMode `json:"mode"`
	// Bound limits frewrite and erewrite steps, and srewrite solutions.
	// Zero or negative means no bound.
	Bound int `json:"bound,omitempty"`
	// Strategy is the strategy expression for srewrite.
	Strategy string `json:"strategy,omitempty"`
}

// RewriteResult is the outcome of a RewriteRequest.
type RewriteResult struct {
	Term  string `json:"term"`
	Sort  string `json:"sort"`
	Steps int    `json:"steps"`
	// Solutions holds every srewrite result in order; Term is the first one.
	Solutions []string `json:"solutions,omitempty"`
}

// SearchRequest describes a search to start.
type SearchRequest struct {
	Module    string     `json:"module"`
	Initial   string     `json:"initial"`
	Pattern   string     `json:"pattern"`
	Type      SearchType `json:"type"`
	// MaxDepth bounds the transitions from the initial term; zero means no bound.
	MaxDepth int    `json:"max_depth,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	// Condition filters matches: "L = R", "P := T" or "T : Sort".
	Condition string `json:"condition,omitempty"`
}
