package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"github.com/aretw0/loam"
	"gopkg.in/yaml.v3"
)

// Loader adapts a Loam repository to the ModuleLoader interface.
// Each document holds one module in its frontmatter; the body becomes the
// description when none is given.
type Loader struct {
	Repo *loam.TypedRepository[ModuleMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ModuleMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetModule reads a document, resolves its imports and returns the merged
// definition as YAML.
func (l *Loader) GetModule(name string) ([]byte, error) {
	def, err := l.Definition(context.Background(), name)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal module %s: %w", name, err)
	}
	return data, nil
}

// Definition returns the merged definition of the named document.
func (l *Loader) Definition(ctx context.Context, name string) (module.Definition, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return module.Definition{}, fmt.Errorf("%w: %s: %v", domain.ErrModuleNotFound, name, err)
	}

	def := module.Definition{
		Name:        moduleName(doc.ID, doc.Data),
		Description: doc.Data.Description,
	}
	if def.Description == "" {
		def.Description = strings.TrimSpace(doc.Content)
	}

	m := newMerger()
	if err := l.resolveImports(ctx, doc.Data.Imports, m, map[string]bool{trimExtension(doc.ID): true}); err != nil {
		return module.Definition{}, fmt.Errorf("error resolving imports for %s: %w", name, err)
	}
	m.add(doc.Data)
	m.into(&def)
	return def, nil
}

// resolveImports walks imported documents depth-first. Each document is
// merged once; a document reached again on the current path is a cycle.
func (l *Loader) resolveImports(ctx context.Context, imports []string, m *merger, visiting map[string]bool) error {
	for _, ref := range imports {
		refID := trimExtension(ref)
		if visiting[refID] {
			return fmt.Errorf("cycle detected in module imports: %s", refID)
		}
		if m.included[refID] {
			continue
		}

		doc, err := l.Repo.Get(ctx, refID)
		if err != nil {
			return fmt.Errorf("failed to load imported module '%s': %w", refID, err)
		}

		visiting[refID] = true
		err = l.resolveImports(ctx, doc.Data.Imports, m, visiting)
		delete(visiting, refID)
		if err != nil {
			return err
		}

		m.included[refID] = true
		m.add(doc.Data)
	}
	return nil
}

// ListModules lists the module names in the repository.
func (l *Loader) ListModules() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		if hidden(doc.ID) {
			continue
		}
		name := moduleName(doc.ID, doc.Data)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: module '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: a pending signal already covers this change.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

// hidden reports whether a document lives under a dot directory such as
// the session store.
func hidden(id string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(id), "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func moduleName(docID string, meta ModuleMetadata) string {
	if meta.Name != "" {
		return trimExtension(meta.Name)
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// merger accumulates declarations from a document and its imports.
// Sorts, subsorts and operators are deduplicated; later variable
// declarations shadow earlier ones.
type merger struct {
	included map[string]bool
	def      module.Definition
	ops      map[string]bool
}

func newMerger() *merger {
	return &merger{
		included: make(map[string]bool),
		ops:      make(map[string]bool),
	}
}

func (m *merger) add(meta ModuleMetadata) {
	for _, s := range meta.Sorts {
		if !slices.Contains(m.def.Sorts, s) {
			m.def.Sorts = append(m.def.Sorts, s)
		}
	}
	for _, s := range meta.Subsorts {
		if !slices.Contains(m.def.Subsorts, s) {
			m.def.Subsorts = append(m.def.Subsorts, s)
		}
	}
	for _, op := range meta.Ops {
		key := op.Name + "/" + strings.Join(op.Domain, ",") + "->" + op.Range
		if m.ops[key] {
			continue
		}
		m.ops[key] = true
		m.def.Ops = append(m.def.Ops, op)
	}
	for name, sort := range meta.Vars {
		if m.def.Vars == nil {
			m.def.Vars = make(map[string]string)
		}
		m.def.Vars[name] = sort
	}
	m.def.Equations = append(m.def.Equations, meta.Equations...)
	m.def.Rules = append(m.def.Rules, meta.Rules...)
	m.def.Strategies = append(m.def.Strategies, meta.Strategies...)
}

func (m *merger) into(def *module.Definition) {
	def.Sorts = m.def.Sorts
	def.Subsorts = m.def.Subsorts
	def.Ops = m.def.Ops
	def.Vars = m.def.Vars
	def.Equations = m.def.Equations
	def.Rules = m.def.Rules
	def.Strategies = m.def.Strategies
}
