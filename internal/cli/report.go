package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/domain"
)

// Printer writes command results either as rendered markdown or as JSON.
type Printer struct {
	Out    io.Writer
	JSON   bool
	Render tui.Renderer
}

func (p *Printer) print(v any, markdown string) error {
	if p.JSON {
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	render := p.Render
	if render == nil {
		render = tui.Plain
	}
	out, err := render(markdown)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	_, err = io.WriteString(p.Out, out)
	return err
}

// RewriteResult prints the outcome of a reduce/rewrite request.
func (p *Printer) RewriteResult(req domain.RewriteRequest, res *domain.RewriteResult) error {
	return p.print(res, rewriteMarkdown(req, res))
}

// SearchResult prints the solutions reported so far and the graph size.
func (p *Printer) SearchResult(snap *domain.Snapshot, found []domain.SolutionRecord, done bool) error {
	v := struct {
		SessionID string                  `json:"session_id,omitempty"`
		Solutions []domain.SolutionRecord `json:"solutions"`
		Done      bool                    `json:"done"`
		States    int                     `json:"states"`
	}{snap.SessionID, found, done, len(snap.States)}
	if v.Solutions == nil {
		v.Solutions = []domain.SolutionRecord{}
	}
	return p.print(v, searchMarkdown(snap, found, done))
}

// Text prints markdown as is, or wraps it as {"text": ...} in JSON mode.
func (p *Printer) Text(markdown string) error {
	return p.print(map[string]string{"text": markdown}, markdown)
}

func rewriteMarkdown(req domain.RewriteRequest, res *domain.RewriteResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s in %s\n\n", req.Mode, req.Module)
	fmt.Fprintf(&sb, "`%s`\n\n", req.Term)
	if req.Mode == domain.ModeSRewrite {
		fmt.Fprintf(&sb, "strategy `%s`, %d rewrites\n\n", req.Strategy, res.Steps)
		if len(res.Solutions) == 0 {
			sb.WriteString("No solution.\n")
			return sb.String()
		}
		for i, sol := range res.Solutions {
			fmt.Fprintf(&sb, "%d. `%s`\n", i+1, sol)
		}
		return sb.String()
	}
	fmt.Fprintf(&sb, "**result** %s: `%s`\n\n", res.Sort, res.Term)
	fmt.Fprintf(&sb, "%d %s\n", res.Steps, plural(res.Steps, "step", "steps"))
	return sb.String()
}

func searchMarkdown(snap *domain.Snapshot, found []domain.SolutionRecord, done bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# search in %s\n\n", snap.Module)
	fmt.Fprintf(&sb, "`%s %s %s`", snap.Initial, snap.SearchType.Arrow(), snap.Pattern)
	if snap.Strategy != "" {
		fmt.Fprintf(&sb, " using `%s`", snap.Strategy)
	}
	sb.WriteString("\n\n")

	for _, sol := range found {
		fmt.Fprintf(&sb, "## Solution %d (state %d)\n\n", solutionIndex(snap, sol.StateNr), sol.StateNr)
		if sol.StateNr < len(snap.States) {
			fmt.Fprintf(&sb, "state: `%s`\n\n", snap.States[sol.StateNr].Term)
		}
		if len(sol.Bindings) == 0 {
			sb.WriteString("empty substitution\n\n")
			continue
		}
		names := make([]string, 0, len(sol.Bindings))
		for name := range sol.Bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- `%s` --> `%s`\n", name, sol.Bindings[name])
		}
		sb.WriteString("\n")
	}

	switch {
	case done && len(snap.Solutions) == 0:
		sb.WriteString("No solution.\n")
	case done:
		sb.WriteString("No more solutions.\n")
	default:
		sb.WriteString("More solutions may exist.\n")
	}
	fmt.Fprintf(&sb, "\n%d %s explored\n", len(snap.States), plural(len(snap.States), "state", "states"))
	return sb.String()
}

// solutionIndex numbers a solution from 1 in discovery order.
func solutionIndex(snap *domain.Snapshot, nr int) int {
	for i, sol := range snap.Solutions {
		if sol.StateNr == nr {
			return i + 1
		}
	}
	return 0
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
