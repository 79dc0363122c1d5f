package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEquation        EventType = "equation"
	EventRule            EventType = "rule"
	EventStateDiscovered EventType = "state_discovered"
	EventSolution        EventType = "solution"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Module    string    `json:"module,omitempty"`
}

// RewriteEvent reports a single equation or rule application.
type RewriteEvent struct {
	EventBase
	Label    string `json:"label,omitempty"`
	Position string `json:"position"`
}

// StateEvent reports a search state being discovered or reported as a solution.
type StateEvent struct {
	EventBase
	StateNr int `json:"state_nr"`
	Parent  int `json:"parent"`
	Depth   int `json:"depth"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnRewrite         func(context.Context, *RewriteEvent)
	OnStateDiscovered func(context.Context, *StateEvent)
	OnSolution        func(context.Context, *StateEvent)
}

// EmitRewrite invokes OnRewrite if set.
func (h LifecycleHooks) EmitRewrite(ctx context.Context, module string, kind EventType, label, position string) {
	if h.OnRewrite == nil {
		return
	}
	h.OnRewrite(ctx, &RewriteEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: kind, Module: module},
		Label:     label,
		Position:  position,
	})
}

// EmitState invokes OnStateDiscovered or OnSolution depending on kind.
func (h LifecycleHooks) EmitState(ctx context.Context, module string, kind EventType, nr, parent, depth int) {
	hook := h.OnStateDiscovered
	if kind == EventSolution {
		hook = h.OnSolution
	}
	if hook == nil {
		return
	}
	hook(ctx, &StateEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: kind, Module: module},
		StateNr:   nr,
		Parent:    parent,
		Depth:     depth,
	})
}

// Merge combines two hook sets; both callbacks run, a first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRewrite:         chainRewrite(h.OnRewrite, other.OnRewrite),
		OnStateDiscovered: chainState(h.OnStateDiscovered, other.OnStateDiscovered),
		OnSolution:        chainState(h.OnSolution, other.OnSolution),
	}
}

func chainRewrite(a, b func(context.Context, *RewriteEvent)) func(context.Context, *RewriteEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RewriteEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainState(a, b func(context.Context, *StateEvent)) func(context.Context, *StateEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
