package command

// Built-in command names.
const (
	Add       = "add"
	Remove    = "remove"
	Update    = "update"
	Copy      = "copy"
	Paste     = "paste"
	PasteHere = "pasteHere"
	Duplicate = "duplicate"
	ToFront   = "toFront"
	ToBack    = "toBack"
	HideEdges = "hideEdges"
	ShowEdges = "showEdges"
	Reconnect = "reconnect"
	ZoomIn    = "zoomIn"
	ZoomOut   = "zoomOut"
	ResetZoom = "resetZoom"
	AutoZoom  = "autoZoom"
	Topic     = "topic"
	Subtopic  = "subtopic"
	Undo      = "undo"
	Redo      = "redo"
)

// DefaultTemplates returns every built-in template except undo and redo,
// which each Manager registers for itself.
func DefaultTemplates() []Template {
	return []Template{
		AddTemplate(),
		RemoveTemplate(),
		UpdateTemplate(),
		CopyTemplate(),
		PasteTemplate(),
		PasteHereTemplate(),
		DuplicateTemplate(nil),
		ToFrontTemplate(),
		ToBackTemplate(),
		HideEdgesTemplate(),
		ShowEdgesTemplate(),
		ReconnectTemplate(),
		ZoomInTemplate(),
		ZoomOutTemplate(),
		ResetZoomTemplate(),
		AutoZoomTemplate(),
		TopicTemplate(),
		SubtopicTemplate(),
	}
}

// RegisterDefaults registers the built-in templates on m.
func RegisterDefaults(m *Manager) {
	for _, t := range DefaultTemplates() {
		m.Register(t)
	}
}
