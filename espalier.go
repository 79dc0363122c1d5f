package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/loam"

	"github.com/aretw0/espalier/internal/logging"
	loamAdapter "github.com/aretw0/espalier/pkg/adapters/loam"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/rewrite"
)

// Engine is the high-level entry point of the library.
// It loads modules through a ModuleLoader, compiles them once and hands out
// Module handles. An Engine is safe for concurrent use.
type Engine struct {
	loader         ports.ModuleLoader
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	metrics        *observability.Metrics
	conditionBound int
	Name           string

	mu      sync.RWMutex
	modules map[string]*Module
	// compiled holds the definitions registered with Compile, which Reload
	// cannot get back from the loader.
	compiled map[string]module.Definition
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom ModuleLoader, bypassing the default Loam initialization.
func WithLoader(l ports.ModuleLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records rewrites and search progress into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithConditionBound limits the states explored when checking rewrite conditions.
func WithConditionBound(n int) Option {
	return func(e *Engine) {
		e.conditionBound = n
	}
}

// New initializes a new Engine.
// By default, it reads modules from a Loam repository at the given path.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		modules:        make(map[string]*Module),
		compiled:       make(map[string]module.Definition),
		conditionBound: rewrite.DefaultConditionBound,
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		eng.Name = filepath.Base(absPath)

		// The engine never writes module documents.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}

		typedRepo := loam.NewTypedRepository[loamAdapter.ModuleMetadata](repo)
		eng.loader = loamAdapter.New(typedRepo)
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("repository", eng.Name)
	}
	if eng.metrics != nil {
		eng.hooks = eng.hooks.Merge(eng.metrics.Hooks())
	}

	return eng, nil
}

// Load returns the named module, compiling it on first use.
func (e *Engine) Load(ctx context.Context, name string) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m, ok := e.Module(name); ok {
		return m, nil
	}

	data, err := e.loader.GetModule(name)
	if err != nil {
		return nil, err
	}
	def, err := module.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}
	if def.Name == "" {
		def.Name = name
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Another caller may have compiled it meanwhile.
	if m, ok := e.modules[name]; ok {
		return m, nil
	}
	m, err := e.compile(def)
	if err != nil {
		return nil, err
	}
	e.modules[name] = m
	e.logger.Info("module loaded", "module", name,
		"equations", len(m.def.Equations), "rules", len(m.def.Rules))
	return m, nil
}

// Compile registers a module built in code, e.g. with the dsl package.
// It replaces any module of the same name.
func (e *Engine) Compile(def module.Definition) (*Module, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.compile(def)
	if err != nil {
		return nil, err
	}
	e.modules[def.Name] = m
	e.compiled[def.Name] = def
	return m, nil
}

func (e *Engine) compile(def module.Definition) (*Module, error) {
	mod, err := module.Compile(def)
	if err != nil {
		return nil, err
	}
	rw := rewrite.New(mod,
		rewrite.WithLogger(e.logger),
		rewrite.WithLifecycleHooks(e.hooks),
		rewrite.WithConditionBound(e.conditionBound),
	)
	return &Module{def: mod, eng: rw}, nil
}

// Module returns an already loaded module.
func (e *Engine) Module(name string) (*Module, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.modules[name]
	return m, ok
}

// Modules lists the modules the loader can provide together with those
// compiled in code.
func (e *Engine) Modules(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listed, err := e.loader.ListModules()
	if err != nil {
		return nil, err
	}
	names := slices.Clone(listed)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	e.mu.RLock()
	for n := range e.modules {
		if !seen[n] {
			names = append(names, n)
		}
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

// Reload drops every loaded module so the next Load reads it again. Modules
// registered with Compile are compiled afresh. Handles already given out
// stay valid.
func (e *Engine) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modules = make(map[string]*Module, len(e.compiled))
	for name, def := range e.compiled {
		m, err := e.compile(def)
		if err != nil {
			e.logger.Warn("recompiling module failed", "module", name, "err", err)
			delete(e.compiled, name)
			continue
		}
		e.modules[name] = m
	}
}

// Watch returns a channel that signals when the underlying modules change.
// Compiled modules are dropped before each signal.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for range events {
			e.Reload()
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch, nil
}

// Loader returns the underlying ModuleLoader used by the engine.
func (e *Engine) Loader() ports.ModuleLoader {
	return e.loader
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
