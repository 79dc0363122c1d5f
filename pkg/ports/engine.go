package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// Evaluator is the rewriting surface exposed to remote adapters (HTTP, MCP).
// Terms and strategies travel as text and are parsed in the named module.
type Evaluator interface {
	// Modules lists the modules that can be loaded.
	Modules(ctx context.Context) ([]string, error)

	// Evaluate runs one reduce/rewrite/frewrite/erewrite/srewrite request.
	Evaluate(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResult, error)

	// StartSearch prepares a lazy search. Nothing is explored until the
	// session is advanced.
	StartSearch(ctx context.Context, req domain.SearchRequest) (SearchCursor, error)
}

// SearchCursor is a running search as seen by adapters.
type SearchCursor interface {
	// Next reports up to n more solutions. Done is true once the frontier is exhausted.
	Next(ctx context.Context, n int) (solutions []domain.SolutionRecord, done bool, err error)

	// Snapshot exports the explored graph.
	Snapshot() *domain.Snapshot
}
