package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/domain"
)

func newSessionID() string {
	return uuid.NewString()
}

// ListSessions prints the saved searches.
func ListSessions(ctx context.Context, opts Options, w io.Writer) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	sessions, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No saved sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Saved Sessions:")
	for _, s := range sessions {
		fmt.Fprintln(w, "- "+s)
	}
	return nil
}

// InspectSession prints a saved search as JSON.
func InspectSession(ctx context.Context, opts Options, id string, w io.Writer) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	p := &Printer{Out: w, JSON: true}
	return p.print(snap, "")
}

// SessionGraph prints the Mermaid graph of a saved search. A non-negative
// state highlights its path.
func SessionGraph(ctx context.Context, opts Options, id string, state int, w io.Writer) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	var gopts []graph.Option
	if state >= 0 {
		path := snap.Path(state)
		if path == nil {
			return fmt.Errorf("%w: %d", domain.ErrStateNotFound, state)
		}
		gopts = append(gopts, graph.WithPath(path))
	}
	_, err = io.WriteString(w, graph.Mermaid(snap, gopts...))
	return err
}

// RemoveSessions deletes saved searches, reporting each one.
func RemoveSessions(ctx context.Context, opts Options, ids []string, w io.Writer) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	failed := 0
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d sessions", failed)
	}
	return nil
}
