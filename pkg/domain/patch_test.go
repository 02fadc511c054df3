package domain_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatch_ReplacesOnlyNamedFields(t *testing.T) {
	node := domain.NodeModel{ID: "n1", Kind: "task", Label: "before", X: 10, Y: 20}

	got, err := domain.ApplyPatch(node, domain.Patch{"label": "after", "x": 42})
	require.NoError(t, err)

	assert.Equal(t, "after", got.Label)
	assert.Equal(t, 42.0, got.X)
	assert.Equal(t, 20.0, got.Y)
	assert.Equal(t, "task", got.Kind)
	assert.Equal(t, "before", node.Label, "input model must not change")
}

func TestPickPatch_RoundTrip(t *testing.T) {
	node := domain.NodeModel{ID: "n1", Label: "before", X: 10}
	update := domain.Patch{"label": "after", "width": 80}

	origin, err := domain.PickPatch(node, update.Keys())
	require.NoError(t, err)
	assert.Equal(t, "before", origin["label"])
	assert.Contains(t, origin, "width")

	updated, err := domain.ApplyPatch(node, update)
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Width)

	restored, err := domain.ApplyPatch(updated, origin)
	require.NoError(t, err)
	assert.Equal(t, node, restored)
}

func TestApplyPatch_EdgeEndpoint(t *testing.T) {
	edge := domain.EdgeModel{
		ID:     "e1",
		Source: domain.AtNode("a", 1),
		Target: domain.AtNode("b", 3),
	}

	t.Run("Typed Value", func(t *testing.T) {
		got, err := domain.ApplyPatch(edge, domain.Patch{"source": domain.AtNode("c", 2)})
		require.NoError(t, err)
		assert.Equal(t, domain.AtNode("c", 2), got.Source)
		assert.Equal(t, edge.Target, got.Target)
	})

	t.Run("Decoded JSON Value", func(t *testing.T) {
		got, err := domain.ApplyPatch(edge, domain.Patch{
			"target": map[string]any{"node": "d", "anchor": float64(0)},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AtNode("d", 0), got.Target)
	})
}

func TestLinkRule_Allows(t *testing.T) {
	tests := []struct {
		name    string
		rule    domain.LinkRule
		dir     domain.Direction
		in, out int
		want    bool
	}{
		{"Unbounded", domain.LinkRule{}, domain.DirectionOut, 10, 10, true},
		{"Out Under Limit", domain.LinkRule{Out: 1}, domain.DirectionOut, 5, 0, true},
		{"Out At Limit", domain.LinkRule{Out: 1}, domain.DirectionOut, 0, 1, false},
		{"In At Limit Ignored For Out", domain.LinkRule{In: 1}, domain.DirectionOut, 1, 0, true},
		{"In At Limit", domain.LinkRule{In: 2}, domain.DirectionIn, 2, 0, false},
		{"Any Needs Both", domain.LinkRule{In: 2, Out: 2}, domain.DirectionAny, 1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Allows(tt.dir, tt.in, tt.out))
		})
	}
}

func TestDeriveGraphState(t *testing.T) {
	assert.Equal(t, domain.GraphStateCanvasSelected, domain.DeriveGraphState(nil, nil))
	assert.Equal(t, domain.GraphStateNodeSelected, domain.DeriveGraphState([]string{"a"}, nil))
	assert.Equal(t, domain.GraphStateEdgeSelected, domain.DeriveGraphState(nil, []string{"e"}))
	assert.Equal(t, domain.GraphStateMultiSelected, domain.DeriveGraphState([]string{"a"}, []string{"e"}))
}

func TestRejectionError(t *testing.T) {
	err := domain.Reject("remove", domain.ReasonNoSelection)
	assert.ErrorIs(t, err, domain.ErrRejected)
	assert.Equal(t, domain.ReasonNoSelection, domain.ReasonOf(err))
	assert.Equal(t, domain.RejectReason(""), domain.ReasonOf(domain.ErrItemNotFound))
}
