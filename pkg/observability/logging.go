package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRewrite: func(ctx context.Context, e *domain.RewriteEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"module", e.Module,
				"label", e.Label,
				"position", e.Position,
			)
		},
		OnStateDiscovered: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_discovered",
				"module", e.Module,
				"state", e.StateNr,
				"parent", e.Parent,
				"depth", e.Depth,
			)
		},
		OnSolution: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "solution",
				"module", e.Module,
				"state", e.StateNr,
			)
		},
	}
}
