package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/module"
)

// RunPublish copies modules from the repository into Redis, imports resolved,
// so that servers started with --redis-modules can load them. With no names
// every module is published. Each module must compile first.
func RunPublish(ctx context.Context, opts Options, names []string, w io.Writer) error {
	if opts.RedisAddr == "" {
		return fmt.Errorf("publish requires --redis")
	}
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	repoOpts := opts
	repoOpts.RedisModules = false
	eng, err := createEngine(repoOpts, logger)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		if names, err = eng.Modules(ctx); err != nil {
			return err
		}
	}

	client := redisClient(opts)
	defer client.Close()
	target := redis.NewLoader(client, opts.moduleKey())

	for _, name := range names {
		data, err := eng.Loader().GetModule(name)
		if err != nil {
			return err
		}
		if _, err := module.Load(data); err != nil {
			return fmt.Errorf("module %s does not compile: %w", name, err)
		}
		if err := target.Publish(ctx, name, data); err != nil {
			return fmt.Errorf("failed to publish %s: %w", name, err)
		}
		fmt.Fprintf(w, "Published module '%s' to %s\n", name, opts.moduleKey())
	}
	return nil
}
