package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor collectors.
type Metrics struct {
	CommandsExecuted *prometheus.CounterVec
	CommandsRejected *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	HistoryLength    *prometheus.GaugeVec
	Gestures         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CommandsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easel_commands_executed_total",
				Help: "Total number of commands executed",
			},
			[]string{"command"},
		),
		CommandsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easel_commands_rejected_total",
				Help: "Total number of commands refused by a guard",
			},
			[]string{"command", "reason"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "easel_command_duration_seconds",
				Help:    "Duration of command executions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"command"},
		),
		HistoryLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "easel_history_length",
				Help: "Number of undoable entries per document",
			},
			[]string{"document"},
		),
		Gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easel_gestures_total",
				Help: "Edge gestures by outcome",
			},
			[]string{"gesture", "outcome", "reason"},
		),
	}
	for _, c := range []prometheus.Collector{m.CommandsExecuted, m.CommandsRejected, m.CommandDuration, m.HistoryLength, m.Gestures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks records every lifecycle event into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandExecuted: func(_ context.Context, e *domain.CommandEvent) {
			m.CommandsExecuted.WithLabelValues(e.Command).Inc()
			m.CommandDuration.WithLabelValues(e.Command).Observe(e.Duration.Seconds())
			m.HistoryLength.WithLabelValues(e.DocumentID).Set(float64(e.Length))
		},
		OnCommandRejected: func(_ context.Context, e *domain.CommandEvent) {
			m.CommandsRejected.WithLabelValues(e.Command, string(e.Reason)).Inc()
		},
		OnGestureCommit: func(_ context.Context, e *domain.GestureEvent) {
			m.Gestures.WithLabelValues(e.Gesture, "commit", "").Inc()
		},
		OnGestureCancel: func(_ context.Context, e *domain.GestureEvent) {
			m.Gestures.WithLabelValues(e.Gesture, "cancel", string(e.Reason)).Inc()
		},
	}
}

// LogHooks writes one line per lifecycle event. Rejections and cancellations
// are expected during normal editing and log at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandExecuted: func(ctx context.Context, e *domain.CommandEvent) {
			logger.InfoContext(ctx, "command_executed",
				"document", e.DocumentID,
				"command", e.Command,
				"index", e.Index,
				"length", e.Length,
			)
		},
		OnCommandRejected: func(ctx context.Context, e *domain.CommandEvent) {
			logger.DebugContext(ctx, "command_rejected",
				"document", e.DocumentID,
				"command", e.Command,
				"reason", e.Reason,
			)
		},
		OnGestureCommit: func(ctx context.Context, e *domain.GestureEvent) {
			logger.InfoContext(ctx, "gesture_commit",
				"document", e.DocumentID,
				"gesture", e.Gesture,
				"edge", e.EdgeID,
			)
		},
		OnGestureCancel: func(ctx context.Context, e *domain.GestureEvent) {
			logger.DebugContext(ctx, "gesture_cancel",
				"document", e.DocumentID,
				"gesture", e.Gesture,
				"reason", e.Reason,
			)
		},
	}
}
