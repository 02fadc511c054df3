package command_test

import (
	"context"
	"testing"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("Zoom Clamps And Stops At The Limits", func(t *testing.T) {
		g := memory.NewGraph(memory.WithZoomLimits(0.5, 1.08))
		env := newEnv(g)
		m := newManager()

		require.NoError(t, m.Execute(ctx, env, command.ZoomIn, nil))
		assert.InDelta(t, 1.05, g.Zoom(), 1e-9)
		require.NoError(t, m.Execute(ctx, env, command.ZoomIn, nil))
		assert.InDelta(t, 1.08, g.Zoom(), 1e-9)

		err := m.Execute(ctx, env, command.ZoomIn, nil)
		assert.Equal(t, domain.ReasonZoomLimit, domain.ReasonOf(err))

		g.SetView(domain.Viewport{Zoom: 0.51})
		require.NoError(t, m.Execute(ctx, env, command.ZoomOut, nil))
		assert.InDelta(t, 0.5, g.Zoom(), 1e-9)
		err = m.Execute(ctx, env, command.ZoomOut, nil)
		assert.Equal(t, domain.ReasonZoomLimit, domain.ReasonOf(err))

		length, _ := m.History()
		assert.Zero(t, length, "view commands are never recorded")
	})

	t.Run("Zoom Keeps The Center Fixed", func(t *testing.T) {
		g := memory.NewGraph(memory.WithSize(800, 600))
		m := newManager()
		g.SetView(domain.Viewport{Zoom: 2, X: 10, Y: 20})

		require.NoError(t, m.Execute(ctx, newEnv(g), command.ResetZoom, nil))
		v := g.View()
		assert.InDelta(t, 1, v.Zoom, 1e-9)
		assert.InDelta(t, 400-(400-10)/2.0, v.X, 1e-9)
		assert.InDelta(t, 300-(300-20)/2.0, v.Y, 1e-9)
	})

	t.Run("Allowed In Read Only Mode", func(t *testing.T) {
		g := flowFixture(t)
		g.SetMode(domain.ModeReadonly)
		m := newManager()

		require.NoError(t, m.Execute(ctx, newEnv(g), command.ZoomOut, nil))
		require.NoError(t, m.Execute(ctx, newEnv(g), command.AutoZoom, nil))
	})

	t.Run("Auto Zoom Needs Items", func(t *testing.T) {
		err := newManager().Execute(ctx, newEnv(memory.NewGraph()), command.AutoZoom, nil)
		assert.Equal(t, domain.ReasonNoItems, domain.ReasonOf(err))
	})
}
