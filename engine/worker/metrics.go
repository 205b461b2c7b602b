package worker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics bundles the instruments the pool records against. A zero Metrics
// (as returned by newMetrics(nil) or an un-populated literal) is safe to use
// and simply records nothing, so metrics stay off unless a caller supplies a
// real meter.Meter — matching the teacher's nil-meter-safe instrument idiom.
type Metrics struct {
	tasksTotal  metric.Int64Counter
	workerBusy  metric.Int64UpDownCounter
}

// newMetrics builds a Metrics from meter. A nil meter yields a no-op
// Metrics whose Record/Add calls are all guarded no-ops.
func newMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return &Metrics{}, nil
	}
	tasksTotal, err := meter.Int64Counter(
		"assemble_tasks_total",
		metric.WithDescription("Total tasks executed by the worker pool, labeled by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	workerBusy, err := meter.Int64UpDownCounter(
		"assemble_worker_busy",
		metric.WithDescription("Number of worker slots currently executing a task"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{tasksTotal: tasksTotal, workerBusy: workerBusy}, nil
}

func (m *Metrics) recordTask(ctx context.Context, outcome string) {
	if m == nil || m.tasksTotal == nil {
		return
	}
	m.tasksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", outcome)))
}

func (m *Metrics) workerStarted(ctx context.Context) {
	if m == nil || m.workerBusy == nil {
		return
	}
	m.workerBusy.Add(ctx, 1)
}

func (m *Metrics) workerFinished(ctx context.Context) {
	if m == nil || m.workerBusy == nil {
		return
	}
	m.workerBusy.Add(ctx, -1)
}
