package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/internal/sanitize"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/session"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Watcher is implemented by engines that can signal module changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server implements the generated ServerInterface over an Evaluator.
type Server struct {
	Evaluator ports.Evaluator
	Sessions  *session.Manager
	Streams   *StreamManager
	Logger    *slog.Logger

	metrics    http.Handler
	apiVersion string
}

var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*Server)

// WithSessions sets the session manager. The default keeps snapshots in memory.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the evaluator.
func NewHandler(eval ports.Evaluator, opts ...Option) http.Handler {
	server := &Server{
		Evaluator: eval,
		Streams:   NewStreamManager(),
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Sessions == nil {
		server.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(server.Logger))
	}
	return enableCORS(server.routes())
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if spec, err := GetSwagger(); err != nil {
		s.Logger.Error("Failed to load OpenAPI spec", "err", err)
	} else {
		s.apiVersion = spec.Info.Version
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			s.writeError(w, "OpenAPI", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		},
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// searchBody defaults the search type to ANY_STEPS when it is omitted.
type searchBody struct {
	domain.SearchRequest
	Type *domain.SearchType `json:"type"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrStateNotFound):
		return http.StatusNotFound
	case errors.Is(err, sanitize.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSessionNotLive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrSortMismatch),
		errors.Is(err, domain.ErrArity),
		errors.Is(err, domain.ErrUnknownSymbol),
		errors.Is(err, domain.ErrUnknownSort),
		errors.Is(err, domain.ErrUnknownRuleLabel),
		errors.Is(err, domain.ErrUnboundStrategyLabel),
		errors.Is(err, sanitize.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidModule):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	} else {
		s.Logger.Warn(op+" rejected", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		App:        "espalier-http",
		Version:    strings.TrimSpace(espalier.Version),
		APIVersion: s.apiVersion,
	})
}

// ListModules handles the GET /modules request.
func (s *Server) ListModules(w http.ResponseWriter, r *http.Request) {
	names, err := s.Evaluator.Modules(r.Context())
	if err != nil {
		s.writeError(w, "ListModules", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateJSONRequestBody
	if !decode(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = domain.ModeReduce
	}
	if err := sanitize.Fields(&req.Term, &req.Strategy); err != nil {
		s.writeError(w, "Evaluate", err)
		return
	}
	res, err := s.Evaluator.Evaluate(r.Context(), req)
	if err != nil {
		s.writeError(w, "Evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if !decode(w, r, &body) {
		return
	}
	req := body.SearchRequest
	req.Type = domain.AnySteps
	if body.Type != nil {
		req.Type = *body.Type
	}
	if err := sanitize.Fields(&req.Initial, &req.Pattern, &req.Strategy, &req.Condition); err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}

	cursor, err := s.Evaluator.StartSearch(r.Context(), req)
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	id, err := s.Sessions.Create(r.Context(), cursor)
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: id})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// NextSolutions handles the POST /sessions/{id}/next request.
// The query parameter n (default 1) bounds the solutions returned.
func (s *Server) NextSolutions(w http.ResponseWriter, r *http.Request, id SessionID, params NextSolutionsParams) {
	n := 1
	if params.N != nil {
		if *params.N < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "n must be a non-negative integer"})
			return
		}
		n = *params.N
	}

	found, done, err := s.Sessions.Next(r.Context(), id, n)
	if err != nil {
		s.writeError(w, "NextSolutions", err)
		return
	}
	if found == nil {
		found = []SolutionRecord{}
	}
	resp := NextResponse{Solutions: found, Done: done}
	if len(found) > 0 || done {
		if data, err := json.Marshal(resp); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	snap, err := s.Sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetGraph handles the GET /sessions/{id}/graph request. It renders the
// explored graph as a Mermaid flowchart; ?state=N highlights the path to N.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request, id SessionID, params GetGraphParams) {
	snap, err := s.Sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, "GetGraph", err)
		return
	}
	var opts []graph.Option
	if params.State != nil {
		opts = append(opts, graph.WithPath(snap.Path(*params.State)))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.Mermaid(snap, opts...)))
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers returns the number of open streams for a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// With ?session_id=ID it streams the solutions of that session as they are
// pulled; without it, it signals module reloads.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var sessionID string
	if params.SessionId != nil {
		sessionID = *params.SessionId
	}
	if sessionID == "" {
		watcher, ok := s.Evaluator.(Watcher)
		if !ok {
			writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "module watching is not supported"})
			return
		}
		events, err := watcher.Watch(r.Context())
		if err != nil {
			s.writeError(w, "SubscribeEvents", err)
			return
		}
		setStreamHeaders(w)
		fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: modules changed\n\n")
				flusher.Flush()
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	setStreamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
