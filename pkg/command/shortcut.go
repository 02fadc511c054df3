package command

import (
	"context"
	"slices"
	"strings"
)

// Modifier is a held special key.
type Modifier string

const (
	Ctrl  Modifier = "ctrl"
	Alt   Modifier = "alt"
	Shift Modifier = "shift"
	Meta  Modifier = "meta"
)

// Shortcut binds a key code, optionally combined with modifiers. A shortcut
// without modifiers matches its code whatever else is held.
type Shortcut struct {
	Modifiers []Modifier `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Code      string     `json:"code" yaml:"code"`
}

// Key builds a shortcut.
func Key(code string, mods ...Modifier) Shortcut {
	return Shortcut{Modifiers: mods, Code: code}
}

// String renders the shortcut as "ctrl+shift+z".
func (s Shortcut) String() string {
	parts := make([]string, 0, len(s.Modifiers)+1)
	for _, m := range s.Modifiers {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, s.Code), "+")
}

// KeyEvent is a keystroke delivered by the host.
type KeyEvent struct {
	Code  string `json:"code" yaml:"code"`
	Ctrl  bool   `json:"ctrl,omitempty" yaml:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty" yaml:"alt,omitempty"`
	Shift bool   `json:"shift,omitempty" yaml:"shift,omitempty"`
	Meta  bool   `json:"meta,omitempty" yaml:"meta,omitempty"`
	// Editable is set when focus sits in a text input outside the canvas.
	// Such keystrokes belong to the input and are never dispatched.
	Editable bool `json:"editable,omitempty" yaml:"editable,omitempty"`
}

func (k KeyEvent) held() []Modifier {
	var mods []Modifier
	for _, m := range []struct {
		on  bool
		mod Modifier
	}{{k.Ctrl, Ctrl}, {k.Alt, Alt}, {k.Shift, Shift}, {k.Meta, Meta}} {
		if m.on {
			mods = append(mods, m.mod)
		}
	}
	return mods
}

// Matches reports whether the keystroke triggers the shortcut. With
// modifiers, the held set must equal them exactly.
func (s Shortcut) Matches(k KeyEvent) bool {
	if s.Code != k.Code {
		return false
	}
	if len(s.Modifiers) == 0 {
		return true
	}
	held := k.held()
	if len(held) != len(s.Modifiers) {
		return false
	}
	for _, m := range s.Modifiers {
		if !slices.Contains(held, m) {
			return false
		}
	}
	return true
}

// Dispatch executes the first registered command, in registration order, with
// a shortcut matching k and whose guards pass. It reports whether a command
// ran.
func (m *Manager) Dispatch(ctx context.Context, env *Env, k KeyEvent) bool {
	if k.Editable || k.Code == "" {
		return false
	}
	for _, t := range m.Templates() {
		if !slices.ContainsFunc(t.Shortcuts, func(s Shortcut) bool { return s.Matches(k) }) {
			continue
		}
		if !m.CanExecute(env, t.Name) {
			continue
		}
		return m.Execute(ctx, env, t.Name, nil) == nil
	}
	return false
}
