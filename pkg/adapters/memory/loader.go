package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/module"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ModuleLoader using an in-memory map.
type Loader struct {
	mu      sync.RWMutex
	modules map[string][]byte
}

// NewLoader creates a new Loader with the provided raw definitions (YAML or JSON).
func NewLoader(data map[string]string) *Loader {
	modules := make(map[string][]byte, len(data))
	for k, v := range data {
		modules[k] = []byte(v)
	}
	return &Loader{modules: modules}
}

// NewFromDefinitions creates a new Loader from module definitions.
// This handles serialization automatically, improving DX for tests.
func NewFromDefinitions(defs ...module.Definition) (*Loader, error) {
	l := &Loader{modules: make(map[string][]byte, len(defs))}
	for _, def := range defs {
		if err := l.Add(def); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers (or replaces) a definition under its name.
func (l *Loader) Add(def module.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("module definition missing name")
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal module %s: %w", def.Name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modules[def.Name] = data
	return nil
}

// GetModule retrieves the raw definition of a module by name.
func (l *Loader) GetModule(name string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModuleNotFound, name)
	}
	return content, nil
}

// ListModules returns all available module names.
func (l *Loader) ListModules() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.modules))
	for k := range l.modules {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
