package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/domain"
)

// Job is one evaluation re-run by the watcher.
type Job func(ctx context.Context, eng *espalier.Engine, module string) error

// RewriteJob wraps a rewrite request as a Job.
func RewriteJob(req domain.RewriteRequest, p *Printer) Job {
	return func(ctx context.Context, eng *espalier.Engine, module string) error {
		return rewriteWith(ctx, eng, module, req, p)
	}
}

// SearchJob wraps a search as a Job.
func SearchJob(opts Options, req domain.SearchRequest, so SearchOptions, p *Printer) Job {
	return func(ctx context.Context, eng *espalier.Engine, module string) error {
		return searchWith(ctx, opts, eng, module, req, so, p)
	}
}

// RunWatch runs job, then runs it again each time the modules change, until
// the process is interrupted. Errors are reported and the watcher keeps going.
func RunWatch(opts Options, out io.Writer, job Job) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	return watchLoop(sigCtx, opts, out, job)
}

func watchLoop(sigCtx *SignalContext, opts Options, out io.Writer, job Job) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	tui.PrintBanner(out, espalier.Version)

	eng, err := createEngine(opts, logger)
	if err != nil {
		return err
	}
	watchCh, err := eng.Watch(sigCtx)
	if err != nil {
		return fmt.Errorf("watch mode needs a module repository: %w", err)
	}
	logger.Info("Starting Watcher", "path", opts.RepoPath)

	for {
		name, err := determineModule(sigCtx, opts, eng)
		if err == nil {
			err = job(sigCtx, eng, name)
		}
		if err != nil {
			if isInterrupted(err) {
				return handleExecutionError(out, err, sigCtx.Signal())
			}
			logger.Error("Run failed", "err", err)
			printSystemMessage(out, "Error: %v", err)
		}
		printSystemMessage(out, "Waiting for changes...")

		select {
		case <-sigCtx.Done():
			return handleExecutionError(out, sigCtx.Err(), sigCtx.Signal())
		case _, ok := <-watchCh:
			if !ok {
				return nil
			}
			// Delay slightly to ensure file system is stable
			time.Sleep(100 * time.Millisecond)
			printSystemMessage(out, "Change detected, reloading.")
		}
	}
}
