package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// ModuleLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ModuleLoader.
func ModuleLoaderContractTest(t *testing.T, loader ports.ModuleLoader, setupData map[string][]byte) {
	t.Helper()

	t.Run("GetModule_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			content, err := loader.GetModule(name)
			if err != nil {
				t.Fatalf("unexpected error getting module %s: %v", name, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expectedContent)
			}
		}
	})

	t.Run("GetModule_NotFound", func(t *testing.T) {
		_, err := loader.GetModule("non-existent-module")
		if !errors.Is(err, domain.ErrModuleNotFound) {
			t.Errorf("expected ErrModuleNotFound for non-existent module, got %v", err)
		}
	})

	t.Run("ListModules", func(t *testing.T) {
		names, err := loader.ListModules()
		if err != nil {
			t.Fatalf("unexpected error listing modules: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d modules, got %d", len(setupData), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for name := range setupData {
			if !lookup[name] {
				t.Errorf("module %s missing from list", name)
			}
		}
	})
}
