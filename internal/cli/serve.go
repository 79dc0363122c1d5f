package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/adapters/mcp"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/session"
)

// ServeOptions holds the server flags.
type ServeOptions struct {
	Port    int
	Metrics bool
	// MCPPort also serves MCP over SSE when positive.
	MCPPort int
	// SessionTTL expires idle snapshots in Redis.
	SessionTTL time.Duration
}

const shutdownTimeout = 5 * time.Second

// newSessionManager keeps snapshots in Redis when an address is configured,
// with a distributed lock per session, and in memory otherwise.
// Stored snapshots are sealed when a session key is configured.
func newSessionManager(opts Options, ttl time.Duration, logger *slog.Logger) (*session.Manager, func() error, error) {
	if opts.RedisAddr == "" {
		store, err := sealStore(opts, memory.NewStore())
		if err != nil {
			return nil, nil, err
		}
		return session.NewManager(store, session.WithLogger(logger)), func() error { return nil }, nil
	}
	client := redisClient(opts)
	var storeOpts []redis.Option
	if ttl > 0 {
		storeOpts = append(storeOpts, redis.WithTTL(ttl))
	}
	store, err := sealStore(opts, redis.NewFromClient(client, storeOpts...))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	locker := redis.NewLocker(client, "espalier:")
	return session.NewManager(store, session.WithLocker(locker), session.WithLogger(logger)), client.Close, nil
}

// RunServe serves the HTTP API (and optionally MCP over SSE) until ctx is done.
func RunServe(ctx context.Context, opts Options, so ServeOptions, out io.Writer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	if so.Metrics {
		opts.metrics = observability.NewMetrics()
	}
	eng, err := createEngine(opts, logger)
	if err != nil {
		return err
	}
	sessions, closeStore, err := newSessionManager(opts, so.SessionTTL, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithSessions(sessions),
		httpAdapter.WithLogger(logger),
	}
	if opts.metrics != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(opts.metrics.Handler()))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", so.Port),
		Handler:           httpAdapter.NewHandler(eng, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(out, "Starting espalier server on %s\n", srv.Addr)
		fmt.Fprintf(out, "Serving modules from: %s\n", opts.RepoPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	})
	if so.MCPPort > 0 {
		mcpSrv := mcp.NewServer(eng, mcp.WithSessions(sessions), mcp.WithLogger(logger))
		g.Go(func() error {
			return mcpSrv.ServeSSE(gctx, so.MCPPort)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(out, "espalier server stopped gracefully")
	return nil
}

// RunMCP serves MCP over stdio or SSE until ctx is done or stdin closes.
func RunMCP(ctx context.Context, opts Options, transport string, port int) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, err := createEngine(opts, logger)
	if err != nil {
		return err
	}
	sessions, closeStore, err := newSessionManager(opts, 0, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(eng, mcp.WithSessions(sessions), mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		logger.Info("Starting espalier MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting espalier MCP Server (SSE)", "port", port)
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
