package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/file"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/persistence/middleware"
	"github.com/aretw0/espalier/pkg/ports"
)

// SessionDir is where saved searches live, relative to the repository.
const SessionDir = ".espalier/sessions"

// SearchOptions holds the search-only flags.
type SearchOptions struct {
	// Limit is the number of solutions to report; zero or negative reports all.
	Limit int
	// Save keeps the explored graph in the session store.
	Save bool
}

func sessionStore(opts Options) (ports.SnapshotStore, error) {
	return sealStore(opts, file.NewStore(filepath.Join(opts.RepoPath, SessionDir)))
}

// sealStore wraps store with encryption when opts.SessionKey is set.
func sealStore(opts Options, store ports.SnapshotStore) (ports.SnapshotStore, error) {
	if opts.SessionKey == "" {
		return store, nil
	}
	key, err := hex.DecodeString(opts.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}
	return middleware.Chain(store, seal), nil
}

// setup creates the logger and engine and picks the module.
func setup(ctx context.Context, opts Options) (*espalier.Engine, string, error) {
	logger, err := createLogger(opts)
	if err != nil {
		return nil, "", err
	}
	eng, err := createEngine(opts, logger)
	if err != nil {
		return nil, "", err
	}
	name, err := determineModule(ctx, opts, eng)
	if err != nil {
		return nil, "", err
	}
	return eng, name, nil
}

// RunRewrite evaluates one reduce/rewrite request and prints the result.
func RunRewrite(ctx context.Context, opts Options, req domain.RewriteRequest, p *Printer) error {
	eng, name, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	return rewriteWith(ctx, eng, name, req, p)
}

func rewriteWith(ctx context.Context, eng *espalier.Engine, name string, req domain.RewriteRequest, p *Printer) error {
	req.Module = name
	res, err := eng.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	return p.RewriteResult(req, res)
}

// RunSearch runs a search, prints up to so.Limit solutions and optionally saves it.
func RunSearch(ctx context.Context, opts Options, req domain.SearchRequest, so SearchOptions, p *Printer) error {
	eng, name, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	return searchWith(ctx, opts, eng, name, req, so, p)
}

func searchWith(ctx context.Context, opts Options, eng *espalier.Engine, name string, req domain.SearchRequest, so SearchOptions, p *Printer) error {
	req.Module = name
	cursor, err := eng.StartSearch(ctx, req)
	if err != nil {
		return err
	}
	found, done, err := cursor.Next(ctx, so.Limit)
	if err != nil {
		return err
	}
	snap := cursor.Snapshot()

	if so.Save {
		// Saved searches are inspected later with the session commands.
		snap.SessionID = newSessionID()
		store, err := sessionStore(opts)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, snap.SessionID, snap); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return p.SearchResult(snap, found, done)
}

// RunModules lists the available modules.
func RunModules(ctx context.Context, opts Options, p *Printer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, err := createEngine(opts, logger)
	if err != nil {
		return err
	}
	names, err := eng.Modules(ctx)
	if err != nil {
		return err
	}
	md := "# Modules\n\n"
	for _, n := range names {
		md += fmt.Sprintf("- %s\n", n)
	}
	if len(names) == 0 {
		md += "No modules found.\n"
	}
	if p.JSON {
		return p.print(names, md)
	}
	return p.Text(md)
}

// RunCheck compiles every module and reports the ones that fail.
func RunCheck(ctx context.Context, opts Options, p *Printer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, err := createEngine(opts, logger)
	if err != nil {
		return err
	}
	names, err := eng.Modules(ctx)
	if err != nil {
		return err
	}

	failed := 0
	md := "# Check\n\n"
	results := make(map[string]string, len(names))
	for _, n := range names {
		if _, err := eng.Load(ctx, n); err != nil {
			failed++
			results[n] = err.Error()
			md += fmt.Sprintf("- **%s**: %v\n", n, err)
			continue
		}
		results[n] = "ok"
		md += fmt.Sprintf("- %s: ok\n", n)
	}
	if err := p.print(results, md); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d modules failed to compile", failed, len(names))
	}
	return nil
}
