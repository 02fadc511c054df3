package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/presentation/graph"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"github.com/aretw0/easel/pkg/session"
	"github.com/aretw0/easel/pkg/topology"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return spec, nil
}

// Server exposes a session.Manager over HTTP.
type Server struct {
	Sessions *session.Manager

	spec     *openapi3.T
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCheckOrigin replaces the WebSocket origin check. The default accepts
// same-host requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewHandler creates the HTTP handler for the sessions.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	spec, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Sessions: sessions,
		spec:     spec,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.validate)
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{id}", s.GetDocument)
		r.Put("/documents/{id}", s.PutDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Get("/documents/{id}/commands", s.ListCommands)
		r.Post("/documents/{id}/commands", s.ExecuteCommand)
		r.Post("/documents/{id}/undo", s.Undo)
		r.Post("/documents/{id}/redo", s.Redo)
		r.Post("/documents/{id}/keys", s.PressKey)
		r.Post("/documents/{id}/pointer", s.Pointer)
		r.Put("/documents/{id}/mode", s.SetMode)
		r.Get("/documents/{id}/validate", s.ValidateDocument)
		r.Get("/documents/{id}/mermaid", s.GetMermaid)
		r.Get("/documents/{id}/events", s.SubscribeEvents)
		r.Get("/documents/{id}/ws", s.GestureSocket)
	})

	return enableCORS(r), nil
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

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Easel API Documentation</title>
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

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "easel-http",
		"version":     strings.TrimSpace(easel.Version),
		"api_version": apiVersion,
	})
}

// ListDocuments handles the GET /documents request.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, "ListDocuments", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetDocument handles the GET /documents/{id} request.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Sessions.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "GetDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutDocument handles the PUT /documents/{id} request.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	var doc domain.Document
	if !s.decode(w, r, "PutDocument", &doc) {
		return
	}
	s.edit(w, r, "PutDocument", func(ctx context.Context, ed *easel.Editor) error {
		doc.ID = ed.ID()
		return ed.Load(ctx, &doc)
	})
}

// DeleteDocument handles the DELETE /documents/{id} request.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "DeleteDocument", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommandInfo describes one registered command.
type CommandInfo struct {
	Name       string   `json:"name"`
	CanExecute bool     `json:"can_execute"`
	Shortcuts  []string `json:"shortcuts,omitempty"`
}

// ListCommands handles the GET /documents/{id}/commands request.
func (s *Server) ListCommands(w http.ResponseWriter, r *http.Request) {
	var infos []CommandInfo
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *easel.Editor) error {
		infos = DescribeCommands(ed)
		return nil
	})
	if err != nil {
		s.fail(w, r, "ListCommands", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// DescribeCommands lists the editor's commands in registration order.
func DescribeCommands(ed *easel.Editor) []CommandInfo {
	templates := ed.Commands().Templates()
	infos := make([]CommandInfo, 0, len(templates))
	for _, t := range templates {
		info := CommandInfo{Name: t.Name, CanExecute: ed.CanExecute(t.Name)}
		for _, sc := range t.Shortcuts {
			info.Shortcuts = append(info.Shortcuts, sc.String())
		}
		infos = append(infos, info)
	}
	return infos
}

// ExecuteRequest is the body of POST /documents/{id}/commands.
type ExecuteRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// ExecuteCommand handles the POST /documents/{id}/commands request.
func (s *Server) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var body ExecuteRequest
	if !s.decode(w, r, "ExecuteCommand", &body) {
		return
	}
	s.edit(w, r, "ExecuteCommand", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Execute(ctx, body.Name, body.Params)
	})
}

// Undo handles the POST /documents/{id}/undo request.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, "Undo", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Undo(ctx)
	})
}

// Redo handles the POST /documents/{id}/redo request.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, "Redo", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Redo(ctx)
	})
}

// PressKey handles the POST /documents/{id}/keys request.
func (s *Server) PressKey(w http.ResponseWriter, r *http.Request) {
	var key command.KeyEvent
	if !s.decode(w, r, "PressKey", &key) {
		return
	}
	var handled bool
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ed *easel.Editor) error {
		handled = ed.HandleKey(ctx, key)
		return nil
	})
	if err != nil {
		s.fail(w, r, "PressKey", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"handled": handled})
}

// Pointer handles the POST /documents/{id}/pointer request. Gesture state
// lives in the hosted editor, so a drag may span several requests.
func (s *Server) Pointer(w http.ResponseWriter, r *http.Request) {
	var event gesture.PointerEvent
	if !s.decode(w, r, "Pointer", &event) {
		return
	}
	s.edit(w, r, "Pointer", func(ctx context.Context, ed *easel.Editor) error {
		ed.HandlePointer(ctx, event)
		return nil
	})
}

// SetMode handles the PUT /documents/{id}/mode request.
func (s *Server) SetMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode domain.GraphMode `json:"mode"`
	}
	if !s.decode(w, r, "SetMode", &body) {
		return
	}
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *easel.Editor) error {
		ed.SetMode(body.Mode)
		return nil
	})
	if err != nil {
		s.fail(w, r, "SetMode", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// ValidationResult is the body of GET /documents/{id}/validate.
type ValidationResult struct {
	Valid      bool                `json:"valid"`
	Violations topology.Violations `json:"violations"`
}

// ValidateDocument handles the GET /documents/{id}/validate request.
func (s *Server) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var result ValidationResult
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *easel.Editor) error {
		result = Audit(ed)
		return nil
	})
	if err != nil {
		s.fail(w, r, "ValidateDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Audit runs the topology audit on the editor's document.
func Audit(ed *easel.Editor) ValidationResult {
	result := ValidationResult{Valid: true, Violations: topology.Violations{}}
	var violations topology.Violations
	if errors.As(ed.Validate(), &violations) {
		result.Valid = false
		result.Violations = violations
	}
	return result
}

// GetMermaid handles the GET /documents/{id}/mermaid request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var chart string
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *easel.Editor) error {
		chart = graph.GenerateMermaid(ed.Snapshot(), Overlay(ed))
		return nil
	})
	if err != nil {
		s.fail(w, r, "GetMermaid", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, chart)
}

// Overlay highlights the editor selection and the audit findings.
func Overlay(ed *easel.Editor) *graph.Overlay {
	overlay := &graph.Overlay{Selected: ed.Graph().FindAllByState(domain.ItemTypeNode, domain.StateSelected)}
	for _, v := range Audit(ed).Violations {
		overlay.Errors = append(overlay.Errors, v.ItemID)
	}
	return overlay
}

// -- Helpers --

// edit runs fn against the hosted editor and answers with the snapshot.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *easel.Editor) error) {
	var doc *domain.Document
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ed *easel.Editor) error {
		err := fn(ctx, ed)
		doc = ed.Snapshot()
		return err
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn(op+": Invalid request body", "error", err)
		return false
	}
	return true
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Reason domain.RejectReason `json:"reason,omitempty"`
}

// fail maps err to a status. Rejections are part of normal editing and log at warn.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusOf(err)
	resp := ErrorResponse{Error: err.Error(), Reason: domain.ReasonOf(err)}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	} else {
		s.logger.WarnContext(r.Context(), op+" refused", "error", err, "reason", resp.Reason)
	}
	writeJSON(w, status, resp)
}

// StatusOf maps an editor error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrRejected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrMissingID),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrInvalidEndpoint):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
