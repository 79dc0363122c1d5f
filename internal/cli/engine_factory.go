package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/observability"
)

// DefaultModuleKey is the Redis hash holding published module definitions.
const DefaultModuleKey = "espalier:modules"

// Options carries the settings shared by every command.
type Options struct {
	RepoPath       string
	Module         string
	LogLevel       string
	ConditionBound int
	JSON           bool

	RedisAddr    string
	RedisModules bool
	ModuleKey    string

	// SessionKey is a hex-encoded AES-256 key; when set, stored snapshots are sealed.
	SessionKey string

	metrics *observability.Metrics
}

func (o Options) moduleKey() string {
	if o.ModuleKey == "" {
		return DefaultModuleKey
	}
	return o.ModuleKey
}

// redisClient opens a client for opts.RedisAddr.
func redisClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: opts.RedisAddr})
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts Options, logger *slog.Logger) (*espalier.Engine, error) {
	engineOpts := []espalier.Option{espalier.WithLogger(logger)}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		engineOpts = append(engineOpts, espalier.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	if opts.metrics != nil {
		engineOpts = append(engineOpts, espalier.WithMetrics(opts.metrics))
	}
	if opts.ConditionBound != 0 {
		engineOpts = append(engineOpts, espalier.WithConditionBound(opts.ConditionBound))
	}
	if opts.RedisModules {
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("--redis-modules requires --redis")
		}
		engineOpts = append(engineOpts, espalier.WithLoader(redis.NewLoader(redisClient(opts), opts.moduleKey())))
	}

	engine, err := espalier.New(opts.RepoPath, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// determineModule picks the module a command works on when --module is not given:
// "main", then "index", then the directory name, then the only module available.
func determineModule(ctx context.Context, opts Options, eng *espalier.Engine) (string, error) {
	if opts.Module != "" {
		return opts.Module, nil
	}
	names, err := eng.Modules(ctx)
	if err != nil {
		return "", err
	}
	candidates := []string{"main", "index"}
	if abs, err := filepath.Abs(opts.RepoPath); err == nil {
		candidates = append(candidates, filepath.Base(abs))
	}
	for _, c := range candidates {
		if slices.Contains(names, c) {
			return c, nil
		}
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("no modules found in %s", opts.RepoPath)
	case 1:
		return names[0], nil
	}
	return "", fmt.Errorf("found %d modules %v; choose one with --module", len(names), names)
}
