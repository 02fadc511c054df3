package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCommands(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ed, err := easel.New(easel.WithDocumentID("doc"), easel.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ed.Execute(ctx, command.Add, map[string]any{"node": domain.NodeModel{ID: "a"}}))
	require.NoError(t, ed.Undo(ctx))
	_ = ed.Undo(ctx)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandsExecuted.WithLabelValues(command.Add)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandsExecuted.WithLabelValues(command.Undo)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandsRejected.WithLabelValues(command.Undo, string(domain.ReasonNothingToUndo))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HistoryLength.WithLabelValues("doc")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.CommandDuration))
}

func TestMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Gestures(t *testing.T) {
	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	hooks := metrics.Hooks()

	ctx := context.Background()
	hooks.OnGestureCommit(ctx, &domain.GestureEvent{Gesture: "add-edge"})
	hooks.OnGestureCancel(ctx, &domain.GestureEvent{Gesture: "add-edge", Reason: domain.ReasonSelfLoop})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Gestures.WithLabelValues("add-edge", "commit", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Gestures.WithLabelValues("add-edge", "cancel", "SelfLoop")))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)

	hooks.OnCommandExecuted(context.Background(), &domain.CommandEvent{Command: "add", Length: 1, Index: 1})
	hooks.OnGestureCancel(context.Background(), &domain.GestureEvent{Gesture: "repoint-edge", Reason: domain.ReasonUnchanged})

	out := buf.String()
	assert.Contains(t, out, `"msg":"command_executed"`)
	assert.Contains(t, out, `"command":"add"`)
	assert.Contains(t, out, `"reason":"Unchanged"`)
}
