// Package script replays recorded editing sessions. A script is a YAML list
// of steps; each step drives the editor the way a host would (a command, a
// keystroke, a pointer event or a mode switch) and may assert on the result.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"gopkg.in/yaml.v3"
)

// ErrExpectation is returned when a step's expect block does not hold.
var ErrExpectation = errors.New("expectation failed")

// Script is a recorded session.
type Script struct {
	// Document is the session id the steps apply to.
	Document string `yaml:"document"`
	// Kind selects the graph kind of a fresh document.
	Kind  domain.GraphKind `yaml:"kind"`
	Steps []Step           `yaml:"steps"`
}

// Step is one host action. Exactly one of Command, Key, Pointer or Mode is set.
type Step struct {
	Command string                `yaml:"command,omitempty"`
	Params  map[string]any        `yaml:"params,omitempty"`
	Key     *command.KeyEvent     `yaml:"key,omitempty"`
	Pointer *gesture.PointerEvent `yaml:"pointer,omitempty"`
	Mode    domain.GraphMode      `yaml:"mode,omitempty"`
	Expect  *Expect               `yaml:"expect,omitempty"`
}

// Expect asserts on the editor after a step. Nil fields are not checked;
// Rejected always is, so an expect block without it asserts acceptance.
type Expect struct {
	Nodes    *int                `yaml:"nodes,omitempty"`
	Edges    *int                `yaml:"edges,omitempty"`
	History  *int                `yaml:"history,omitempty"`
	Handled  *bool               `yaml:"handled,omitempty"`
	Valid    *bool               `yaml:"valid,omitempty"`
	Rejected domain.RejectReason `yaml:"rejected,omitempty"`
}

// Action names the kind of a step.
func (s Step) Action() string {
	switch {
	case s.Command != "":
		return "command:" + s.Command
	case s.Key != nil:
		return "key:" + s.Key.Code
	case s.Pointer != nil:
		return "pointer:" + string(s.Pointer.Type)
	case s.Mode != "":
		return "mode:" + string(s.Mode)
	}
	return ""
}

// Parse decodes a script.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range s.Steps {
		if step.Action() == "" {
			return nil, fmt.Errorf("step %d: no action", i+1)
		}
	}
	return &s, nil
}

// ParseFile reads and decodes the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Result reports one replayed step.
type Result struct {
	Index    int                 `json:"index"`
	Action   string              `json:"action"`
	Rejected domain.RejectReason `json:"rejected,omitempty"`
	Handled  bool                `json:"handled,omitempty"`
}

// Player replays scripts against an editor.
type Player struct {
	logger *slog.Logger
}

// NewPlayer creates a Player. A nil logger discards output.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Player{logger: logger}
}

// Play runs every step in order. A refused command is recorded and play
// goes on; any other error, or a failed expectation, stops the replay and is
// returned with the results so far.
func (p *Player) Play(ctx context.Context, ed *easel.Editor, s *Script) ([]Result, error) {
	results := make([]Result, 0, len(s.Steps))
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := Result{Index: i + 1, Action: step.Action()}

		var err error
		switch {
		case step.Command != "":
			err = ed.Execute(ctx, step.Command, step.Params)
		case step.Key != nil:
			res.Handled = ed.HandleKey(ctx, *step.Key)
		case step.Pointer != nil:
			ed.HandlePointer(ctx, *step.Pointer)
		case step.Mode != "":
			ed.SetMode(step.Mode)
		}
		res.Rejected = domain.ReasonOf(err)
		if err != nil && res.Rejected == "" {
			return results, fmt.Errorf("step %d (%s): %w", res.Index, res.Action, err)
		}
		results = append(results, res)
		p.logger.DebugContext(ctx, "step replayed", "index", res.Index, "action", res.Action, "rejected", res.Rejected)

		if step.Expect != nil {
			if err := check(ed, res, step.Expect); err != nil {
				return results, fmt.Errorf("step %d (%s): %w", res.Index, res.Action, err)
			}
		}
	}
	return results, nil
}

func check(ed *easel.Editor, res Result, want *Expect) error {
	doc := ed.Snapshot()
	length, _ := ed.History()

	mismatch := func(what string, want, got any) error {
		return fmt.Errorf("%w: %s: want %v, got %v", ErrExpectation, what, want, got)
	}
	if want.Nodes != nil && *want.Nodes != len(doc.Nodes) {
		return mismatch("nodes", *want.Nodes, len(doc.Nodes))
	}
	if want.Edges != nil && *want.Edges != len(doc.Edges) {
		return mismatch("edges", *want.Edges, len(doc.Edges))
	}
	if want.History != nil && *want.History != length {
		return mismatch("history", *want.History, length)
	}
	if want.Handled != nil && *want.Handled != res.Handled {
		return mismatch("handled", *want.Handled, res.Handled)
	}
	if want.Valid != nil {
		if valid := ed.Validate() == nil; valid != *want.Valid {
			return mismatch("valid", *want.Valid, valid)
		}
	}
	if want.Rejected != res.Rejected {
		return mismatch("rejected", want.Rejected, res.Rejected)
	}
	return nil
}
