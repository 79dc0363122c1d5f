package ports

import "context"

// ModuleLoader defines how the engine retrieves module definitions.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type ModuleLoader interface {
	// GetModule retrieves the raw definition of a module by name.
	// It returns the raw bytes (which module.Decode parses) or an error
	// wrapping domain.ErrModuleNotFound.
	GetModule(name string) ([]byte, error)

	// ListModules returns the names of all available modules.
	ListModules() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when a module definition changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
