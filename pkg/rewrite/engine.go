package rewrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/term"
)

// DefaultConditionBound caps the states explored when checking a rewrite condition.
const DefaultConditionBound = 1000

// Engine applies the equations and rules of one module.
// It holds no per-call state and may be shared between goroutines.
type Engine struct {
	mod     *module.Module
	store   *term.Store
	matcher *match.Matcher
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	conditionBound int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Applications are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks fired on every equation and rule application.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConditionBound sets how many states a rewrite condition may explore.
func WithConditionBound(n int) Option {
	return func(e *Engine) {
		e.conditionBound = n
	}
}

// New creates an engine for mod.
func New(mod *module.Module, opts ...Option) *Engine {
	e := &Engine{
		mod:            mod,
		store:          mod.Store,
		matcher:        match.NewMatcher(mod.Store),
		conditionBound: DefaultConditionBound,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.logger = e.logger.With("module", mod.Name)
	return e
}

// Module returns the module the engine rewrites with.
func (e *Engine) Module() *module.Module { return e.mod }

// Matcher returns the engine's matcher.
func (e *Engine) Matcher() *match.Matcher { return e.matcher }

// Logger returns the engine's logger, scoped to the module.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Hooks returns the lifecycle hooks of the engine.
func (e *Engine) Hooks() domain.LifecycleHooks { return e.hooks }

// Rewrite reduces t, applies the first applicable rule (pre-order positions,
// rules in declaration order) and reduces the result.
// The count is 1 when a rule applied and 0 otherwise.
func (e *Engine) Rewrite(ctx context.Context, t term.ID) (term.ID, int, error) {
	nf, _, err := e.Reduce(ctx, t)
	if err != nil {
		return t, 0, err
	}
	step, ok, err := first(e.Steps(ctx, nf))
	if err != nil || !ok {
		return nf, 0, err
	}
	return step.Result, 1, nil
}

// FRewrite applies up to bound rule steps, each followed by reduction. Rules
// take turns: each step starts looking from the rule after the last one used.
// A negative bound means no bound.
func (e *Engine) FRewrite(ctx context.Context, t term.ID, bound int) (term.ID, int, error) {
	cur, _, err := e.Reduce(ctx, t)
	if err != nil {
		return t, 0, err
	}
	rules := e.mod.Rules
	next, count := 0, 0
	for bound < 0 || count < bound {
		applied := false
		for k := 0; k < len(rules) && !applied; k++ {
			i := (next + k) % len(rules)
			step, ok, err := first(e.Steps(ctx, cur, OnlyRules(rules[i])))
			if err != nil {
				return t, 0, err
			}
			if ok {
				cur, applied = step.Result, true
				next = i + 1
			}
		}
		if !applied {
			break
		}
		count++
	}
	return cur, count, nil
}

// ERewrite applies rule steps until none applies or limit steps were taken
// (a negative limit means no limit). It returns the final term and the number of
// rule applications; t is returned unchanged with count 0 when nothing applied.
// Termination is the caller's concern: cancel ctx to stop a diverging run.
func (e *Engine) ERewrite(ctx context.Context, t term.ID, limit int) (term.ID, int, error) {
	cur, _, err := e.Reduce(ctx, t)
	if err != nil {
		return t, 0, err
	}
	count := 0
	for limit < 0 || count < limit {
		step, ok, err := first(e.Steps(ctx, cur))
		if err != nil {
			return t, 0, err
		}
		if !ok {
			break
		}
		cur = step.Result
		count++
	}
	if count == 0 {
		return t, 0, nil
	}
	return cur, count, nil
}

// ApplyLabel rewrites t once with the first applicable rule labeled label.
func (e *Engine) ApplyLabel(ctx context.Context, t term.ID, label string, top bool) (Step, bool, error) {
	if !e.mod.HasLabel(label) {
		return Step{}, false, fmt.Errorf("%w: %s", domain.ErrUnknownRuleLabel, label)
	}
	opts := []StepOption{WithLabel(label)}
	if top {
		opts = append(opts, AtTop())
	}
	return first(e.Steps(ctx, t, opts...))
}

func first(it *StepIterator) (Step, bool, error) {
	step, ok := it.Next()
	if err := it.Err(); err != nil {
		return Step{}, false, err
	}
	return step, ok, nil
}
