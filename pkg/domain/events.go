package domain

import (
	"context"
	"time"
)

// EventType names a notification emitted on the graph event bus.
type EventType string

const (
	EventBeforeExecuteCommand EventType = "before_execute_command"
	EventAfterExecuteCommand  EventType = "after_execute_command"
	EventGraphStateChange     EventType = "graph_state_change"
	EventLabelStateChange     EventType = "label_state_change"

	EventAfterAddItem    EventType = "after_add_item"
	EventAfterRemoveItem EventType = "after_remove_item"
	EventAfterUpdateItem EventType = "after_update_item"
	EventAfterRemoveNode EventType = "after_remove_node"

	EventAfterVisibilityChangeAllEdges EventType = "after_visibility_change_all_edges"
	EventShowActionMenu                EventType = "show_action_menu"
	EventHidePortal                    EventType = "hide_portal"
	EventModeChange                    EventType = "mode_change"
	EventViewportChange                EventType = "viewport_change"
	EventPaint                         EventType = "paint"

	EventBeforeConnect EventType = "before_connect"
	EventAfterConnect  EventType = "after_connect"
)

// Event is a notification travelling on the graph event bus. Only the fields
// relevant to Type are set.
type Event struct {
	Type       EventType  `json:"type"`
	Command    string     `json:"command,omitempty"`
	Params     any        `json:"params,omitempty"`
	GraphState GraphState `json:"graph_state,omitempty"`
	ItemID     string     `json:"item_id,omitempty"`
	ItemType   ItemType   `json:"item_type,omitempty"`
	Mode       GraphMode  `json:"mode,omitempty"`
}

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	DocumentID string    `json:"document_id,omitempty"`
}

// CommandEvent describes one call into the command manager.
type CommandEvent struct {
	EventBase
	Command  string        `json:"command"`
	Reason   RejectReason  `json:"reason,omitempty"`
	Index    int           `json:"index"`
	Length   int           `json:"length"`
	Duration time.Duration `json:"duration,omitempty"`
}

// GestureEvent describes the terminal state of an edge gesture.
type GestureEvent struct {
	EventBase
	Gesture string       `json:"gesture"`
	EdgeID  string       `json:"edge_id,omitempty"`
	Reason  RejectReason `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnCommandExecuted func(context.Context, *CommandEvent)
	OnCommandRejected func(context.Context, *CommandEvent)
	OnGestureCommit   func(context.Context, *GestureEvent)
	OnGestureCancel   func(context.Context, *GestureEvent)
}

// Merge returns hooks that call h first and then other for every callback.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommandExecuted: chain(h.OnCommandExecuted, other.OnCommandExecuted),
		OnCommandRejected: chain(h.OnCommandRejected, other.OnCommandRejected),
		OnGestureCommit:   chain(h.OnGestureCommit, other.OnGestureCommit),
		OnGestureCancel:   chain(h.OnGestureCancel, other.OnGestureCancel),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
