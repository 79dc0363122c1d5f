package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

var moduleExts = []string{".yaml", ".yml", ".json"}

// Loader implements ports.ModuleLoader over a directory of module files.
// A module named NAT lives in NAT.yaml, NAT.yml or NAT.json.
type Loader struct {
	Dir string
}

// NewLoader creates a loader reading from dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// GetModule reads the definition file of the named module.
func (l *Loader) GetModule(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid name %q", domain.ErrModuleNotFound, name)
	}
	for _, ext := range moduleExts {
		data, err := os.ReadFile(filepath.Join(l.Dir, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read module %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrModuleNotFound, name)
}

// ListModules returns the names of the module files in the directory.
func (l *Loader) ListModules() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, known := range moduleExts {
			if ext != known {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
