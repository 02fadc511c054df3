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

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/presentation/graph"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/session"
	"github.com/aretw0/easel/pkg/topology"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const documentURI = "easel://documents/{id}"

// EditResponse is the structured result of every editing tool.
type EditResponse struct {
	Document     *domain.Document    `json:"document" jsonschema_description:"Snapshot after the call"`
	HistoryIndex int                 `json:"history_index" jsonschema_description:"Undo cursor"`
	HistoryLen   int                 `json:"history_length" jsonschema_description:"Recorded undoable commands"`
	Rejected     domain.RejectReason `json:"rejected,omitempty" jsonschema_description:"Why the command was refused, if it was"`
}

// Server exposes hosted editors as an MCP server so agents can edit diagrams.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("easel-mcp", strings.TrimSpace(easel.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
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
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
	docParam := mcp.WithString("document_id", mcp.Required(), mcp.Description("ID of the document to edit"))

	s.mcpServer.AddTool(mcp.NewTool("execute_command",
		mcp.WithDescription("Execute a registered editor command (add, remove, update, paste, zoomIn, ...) on a document."),
		docParam,
		mcp.WithString("name", mcp.Required(), mcp.Description("Command name, see list_commands")),
		mcp.WithString("params", mcp.Description("JSON object of command parameters (optional)")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleExecute))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last recorded command."),
		docParam,
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the next undone command."),
		docParam,
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("list_commands",
		mcp.WithDescription("List the commands of a document and whether each can run now."),
		docParam,
	), s.handleListCommands)

	s.mcpServer.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Get the current snapshot of a document."),
		docParam,
	), s.handleGetDocument)

	s.mcpServer.AddTool(mcp.NewTool("validate_document",
		mcp.WithDescription("Audit a document against its connection rules."),
		docParam,
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("get_mermaid",
		mcp.WithDescription("Render a document as a Mermaid flowchart."),
		docParam,
	), s.handleMermaid)
}

func documentID(args map[string]any) (string, error) {
	id, _ := args["document_id"].(string)
	if id == "" {
		return "", errors.New("document_id is required")
	}
	return id, nil
}

// edit runs fn and reports the result. Rejections are answers, not failures.
func (s *Server) edit(ctx context.Context, args map[string]any, fn func(context.Context, *easel.Editor) error) (EditResponse, error) {
	id, err := documentID(args)
	if err != nil {
		return EditResponse{}, err
	}
	var resp EditResponse
	err = s.sessions.WithEditor(ctx, id, func(ctx context.Context, ed *easel.Editor) error {
		err := fn(ctx, ed)
		resp.Document = ed.Snapshot()
		resp.HistoryLen, resp.HistoryIndex = ed.History()
		return err
	})
	if reason := domain.ReasonOf(err); reason != "" {
		s.logger.Warn("MCP: command refused", "document", id, "reason", reason)
		resp.Rejected = reason
		return resp, nil
	}
	return resp, err
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	name, _ := args["name"].(string)
	var params map[string]any
	if raw, ok := args["params"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return EditResponse{}, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}
	return s.edit(ctx, args, func(ctx context.Context, ed *easel.Editor) error {
		return ed.Execute(ctx, name, params)
	})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	return s.edit(ctx, args, func(ctx context.Context, ed *easel.Editor) error { return ed.Undo(ctx) })
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	return s.edit(ctx, args, func(ctx context.Context, ed *easel.Editor) error { return ed.Redo(ctx) })
}

// read runs fn against the editor and returns its value as a text result.
func (s *Server) read(ctx context.Context, request mcp.CallToolRequest, fn func(*easel.Editor) (string, error)) (*mcp.CallToolResult, error) {
	id, err := documentID(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var text string
	err = s.sessions.WithEditor(ctx, id, func(_ context.Context, ed *easel.Editor) error {
		var err error
		text, err = fn(ed)
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", request.Params.Name, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func asJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}

func (s *Server) handleListCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(ctx, request, func(ed *easel.Editor) (string, error) {
		type info struct {
			Name       string `json:"name"`
			CanExecute bool   `json:"can_execute"`
		}
		var out []info
		for _, t := range ed.Commands().Templates() {
			out = append(out, info{Name: t.Name, CanExecute: ed.CanExecute(t.Name)})
		}
		return asJSON(out)
	})
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(ctx, request, func(ed *easel.Editor) (string, error) {
		return asJSON(ed.Snapshot())
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(ctx, request, func(ed *easel.Editor) (string, error) {
		violations := topology.Violations{}
		errors.As(ed.Validate(), &violations)
		return asJSON(map[string]any{"valid": len(violations) == 0, "violations": violations})
	})
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(ctx, request, func(ed *easel.Editor) (string, error) {
		return graph.GenerateMermaid(ed.Snapshot(), nil), nil
	})
}

func (s *Server) registerResources() {
	// EXPOSE: easel://documents
	s.mcpServer.AddResource(mcp.NewResource("easel://documents", "Stored Documents",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		text, _ := asJSON(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "easel://documents",
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})

	// EXPOSE: easel://documents/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(documentURI, "Document Snapshot",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readDocument)
}

func (s *Server) readDocument(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, "easel://documents/")
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid document uri %q", uri)
	}
	doc, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	text, _ := asJSON(doc)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
