package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/internal/sanitize"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/session"
)

// DefaultSolutionLimit is how many solutions search and search_next report
// when the caller gives no limit.
const DefaultSolutionLimit = 10

const sessionURIPrefix = "espalier://sessions/"

// SearchResponse is returned by the search and search_next tools.
type SearchResponse struct {
	SessionID string                  `json:"session_id" jsonschema_description:"Session to pass to search_next"`
	Solutions []domain.SolutionRecord `json:"solutions" jsonschema_description:"Solutions found by this call, in discovery order"`
	Done      bool                    `json:"done" jsonschema_description:"True once the search space is exhausted"`
}

// Server wraps an Evaluator and exposes it as an MCP Server.
type Server struct {
	evaluator ports.Evaluator
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager. The default keeps snapshots in memory.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(eval ports.Evaluator, opts ...Option) *Server {
	s := &Server{
		evaluator: eval,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_modules",
		mcp.WithDescription("List the modules that can be loaded."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.evaluator.Modules(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Reduce or rewrite a term. Modes: reduce (equations only), rewrite (one rule step), "+
			"frewrite (fair rule steps up to bound), erewrite (rule steps until none applies), srewrite (apply a strategy)."),
		mcp.WithString("module", mcp.Required(), mcp.Description("Module name")),
		mcp.WithString("term", mcp.Required(), mcp.Description("Term in prefix notation, e.g. f(a, b)")),
		mcp.WithString("mode", mcp.Description("Operation (default reduce)"),
			mcp.Enum("reduce", "rewrite", "frewrite", "erewrite", "srewrite")),
		mcp.WithNumber("bound", mcp.Description("Step bound for frewrite/erewrite, solution bound for srewrite")),
		mcp.WithString("strategy", mcp.Description("Strategy expression, required for srewrite")),
		mcp.WithOutputSchema[domain.RewriteResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Start a breadth-first search for states matching a pattern and report the first solutions."),
		mcp.WithString("module", mcp.Required(), mcp.Description("Module name")),
		mcp.WithString("initial", mcp.Required(), mcp.Description("Initial term")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Pattern term; variables are bound in solutions")),
		mcp.WithString("type", mcp.Description("ONE_STEP, AT_LEAST_ONE_STEP, ANY_STEPS (default) or NORMAL_FORM")),
		mcp.WithNumber("max_depth", mcp.Description("Depth bound (omit for none)")),
		mcp.WithString("strategy", mcp.Description("Strategy that controls the transitions")),
		mcp.WithString("condition", mcp.Description("Condition on the match, e.g. X = Y")),
		mcp.WithNumber("limit", mcp.Description("Solutions to report now (default 10, 0 for all)")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleSearch))

	nextTool := mcp.NewTool("search_next",
		mcp.WithDescription("Report more solutions of a running search."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by search")),
		mcp.WithNumber("limit", mcp.Description("Solutions to report (default 10, 0 for all)")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(nextTool, mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("search_graph",
		mcp.WithDescription("Render the explored search graph as a Mermaid flowchart."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by search")),
		mcp.WithNumber("state", mcp.Description("Highlight the path to this state")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.searchGraph(ctx, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

// decodeArgs decodes tool arguments into the json-tagged target, converting
// JSON numbers and search type names as needed.
func decodeArgs(args map[string]interface{}, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: invalid arguments: %v", domain.ErrParse, err)
	}
	return nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.RewriteResult, error) {
	req := domain.RewriteRequest{Mode: domain.ModeReduce}
	if err := decodeArgs(args, &req); err != nil {
		return domain.RewriteResult{}, err
	}
	if _, err := domain.ParseRewriteMode(string(req.Mode)); err != nil {
		return domain.RewriteResult{}, err
	}
	if err := sanitize.Fields(&req.Term, &req.Strategy); err != nil {
		s.logger.Warn("MCP evaluate: input rejected", "err", err)
		return domain.RewriteResult{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.evaluator.Evaluate(ctx, req)
	if err != nil {
		return domain.RewriteResult{}, fmt.Errorf("evaluate failed: %w", err)
	}
	return *res, nil
}

type searchArgs struct {
	domain.SearchRequest
	Limit *int `json:"limit"`
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SearchResponse, error) {
	in := searchArgs{SearchRequest: domain.SearchRequest{Type: domain.AnySteps}}
	if err := decodeArgs(args, &in); err != nil {
		return SearchResponse{}, err
	}
	req := in.SearchRequest
	if err := sanitize.Fields(&req.Initial, &req.Pattern, &req.Strategy, &req.Condition); err != nil {
		s.logger.Warn("MCP search: input rejected", "err", err)
		return SearchResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	cursor, err := s.evaluator.StartSearch(ctx, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	id, err := s.sessions.Create(ctx, cursor)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	return s.advance(ctx, id, limitOf(in.Limit))
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SearchResponse, error) {
	var in struct {
		SessionID string `json:"session_id"`
		Limit     *int   `json:"limit"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return SearchResponse{}, err
	}
	return s.advance(ctx, in.SessionID, limitOf(in.Limit))
}

func (s *Server) advance(ctx context.Context, id string, limit int) (SearchResponse, error) {
	found, done, err := s.sessions.Next(ctx, id, limit)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search_next failed: %w", err)
	}
	if found == nil {
		found = []domain.SolutionRecord{}
	}
	return SearchResponse{SessionID: id, Solutions: found, Done: done}, nil
}

func limitOf(limit *int) int {
	if limit == nil {
		return DefaultSolutionLimit
	}
	return *limit
}

func (s *Server) searchGraph(ctx context.Context, args map[string]interface{}) (string, error) {
	var in struct {
		SessionID string `json:"session_id"`
		State     *int   `json:"state"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	snap, err := s.sessions.Snapshot(ctx, in.SessionID)
	if err != nil {
		return "", fmt.Errorf("graph failed: %w", err)
	}
	var opts []graph.Option
	if in.State != nil {
		path := snap.Path(*in.State)
		if path == nil {
			return "", fmt.Errorf("%w: %d", domain.ErrStateNotFound, *in.State)
		}
		opts = append(opts, graph.WithPath(path))
	}
	return graph.Mermaid(snap, opts...), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("espalier://modules", "Available Modules",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.evaluator.Modules(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list modules: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://modules",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURIPrefix+"{id}", "Search Session Snapshot",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return s.readSession(ctx, request.Params.URI)
	})
}

func (s *Server) readSession(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(uri, sessionURIPrefix)
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
