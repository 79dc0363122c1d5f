package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/espalier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Loader implements ports.ModuleLoader over a Redis hash of module name to
// definition, so replicas can share the modules they serve.
type Loader struct {
	client *backend.Client
	key    string
}

// NewLoader creates a loader reading the hash stored at key.
func NewLoader(client *backend.Client, key string) *Loader {
	return &Loader{client: client, key: key}
}

// Publish stores a raw definition under name.
func (l *Loader) Publish(ctx context.Context, name string, data []byte) error {
	return l.client.HSet(ctx, l.key, name, data).Err()
}

// GetModule retrieves the raw definition of a module by name.
func (l *Loader) GetModule(name string) ([]byte, error) {
	data, err := l.client.HGet(context.Background(), l.key, name).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModuleNotFound, name)
		}
		return nil, fmt.Errorf("failed to get module from redis: %w", err)
	}
	return data, nil
}

// ListModules returns the names of the published modules.
func (l *Loader) ListModules() ([]string, error) {
	names, err := l.client.HKeys(context.Background(), l.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
