package http

import (
	"context"
	"net/http"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"github.com/go-chi/chi/v5"
)

// SocketMessage is one client frame on the gesture socket. Exactly one of
// Pointer and Key is expected.
type SocketMessage struct {
	Pointer *gesture.PointerEvent `json:"pointer,omitempty"`
	Key     *command.KeyEvent     `json:"key,omitempty"`
}

// SocketReply answers every frame.
type SocketReply struct {
	Document *domain.Document `json:"document,omitempty"`
	Handled  bool             `json:"handled,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// GestureSocket handles the GET /documents/{id}/ws request. Pointer moves
// arrive far more often than HTTP round trips allow, so a drag is streamed
// over one WebSocket and each frame is answered with the resulting snapshot.
func (s *Server) GestureSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer s.releaseGestures(r.Context(), id)
	s.logger.Info("WebSocket: gesture stream opened", "document", id)

	for {
		var msg SocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.logger.Info("WebSocket: gesture stream closed", "document", id, "error", err)
			return
		}

		var reply SocketReply
		err := s.Sessions.WithEditor(r.Context(), id, func(ctx context.Context, ed *easel.Editor) error {
			switch {
			case msg.Pointer != nil:
				ed.HandlePointer(ctx, *msg.Pointer)
			case msg.Key != nil:
				reply.Handled = ed.HandleKey(ctx, *msg.Key)
			}
			reply.Document = ed.Snapshot()
			return nil
		})
		if err != nil {
			s.logger.Warn("WebSocket: frame failed", "document", id, "error", err)
			reply = SocketReply{Error: err.Error()}
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// releaseGestures ends a drag the closed stream left behind, so the document
// is not kept with an edge lifted off the graph.
func (s *Server) releaseGestures(ctx context.Context, id string) {
	err := s.Sessions.WithEditor(context.WithoutCancel(ctx), id, func(ctx context.Context, ed *easel.Editor) error {
		ed.LeaveCanvas(ctx)
		return nil
	})
	if err != nil {
		s.logger.Warn("WebSocket: failed to release gestures", "document", id, "error", err)
	}
}
