package script_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/script"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const drawEdge = `
document: demo
steps:
  - command: add
    params: {node: {id: a, x: 0, y: 100}}
  - command: add
    params: {node: {id: b, x: 150, y: 100}}
    expect: {nodes: 2, history: 2}
  - pointer: {type: "node:mousedown", item_id: a, item_type: node, target: anchor, anchor: 1}
  - pointer: {type: mousemove, x: 120, y: 100}
  - pointer: {type: mouseup, item_id: b, item_type: node, target: anchor, anchor: 3}
    expect: {edges: 1, history: 3, valid: true}
  - key: {code: KeyZ, ctrl: true}
    expect: {edges: 0, handled: true}
  - mode: readonly
  - command: redo
    expect: {rejected: ReadOnlyMode}
`

func TestPlay(t *testing.T) {
	s, err := script.Parse(strings.NewReader(drawEdge))
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Document)
	require.Len(t, s.Steps, 9)

	ed, err := easel.New()
	require.NoError(t, err)
	results, err := script.NewPlayer(nil).Play(context.Background(), ed, s)
	require.NoError(t, err)
	require.Len(t, results, 9)

	assert.Equal(t, "command:add", results[0].Action)
	assert.Equal(t, "pointer:node:mousedown", results[2].Action)
	assert.True(t, results[5].Handled)
	assert.Equal(t, "mode:readonly", results[6].Action)
	assert.Equal(t, domain.ReasonReadOnlyMode, results[8].Rejected)
}

func TestPlay_ExpectationFails(t *testing.T) {
	s, err := script.Parse(strings.NewReader(`
steps:
  - command: undo
  - command: add
    params: {node: {id: a}}
    expect: {nodes: 2}
`))
	require.NoError(t, err)

	ed, err := easel.New()
	require.NoError(t, err)
	results, err := script.NewPlayer(nil).Play(context.Background(), ed, s)
	assert.ErrorIs(t, err, script.ErrExpectation)
	assert.ErrorContains(t, err, "step 2 (command:add)")
	require.Len(t, results, 2)
	assert.Equal(t, domain.ReasonNothingToUndo, results[0].Rejected, "refusals do not stop the replay")
}

func TestPlay_HardErrorStops(t *testing.T) {
	s, err := script.Parse(strings.NewReader(`
steps:
  - command: add
    params: {node: {id: a}}
  - command: add
    params: {node: {id: a}}
  - command: add
    params: {node: {id: b}}
`))
	require.NoError(t, err)

	ed, err := easel.New()
	require.NoError(t, err)
	results, err := script.NewPlayer(nil).Play(context.Background(), ed, s)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Len(t, results, 1)
	assert.Len(t, ed.Snapshot().Nodes, 1)
}

func TestParse_Errors(t *testing.T) {
	_, err := script.Parse(strings.NewReader("steps:\n  - expect: {nodes: 1}\n"))
	assert.ErrorContains(t, err, "step 1: no action")

	_, err = script.Parse(strings.NewReader("stepz: []\n"))
	assert.ErrorContains(t, err, "failed to parse script")
}
