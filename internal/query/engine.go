package query

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/runnerr0/apmq/internal/storage"
	"github.com/runnerr0/apmq/internal/telemetry"
)

// Engine answers queries against a Store. It never mutates the store.
type Engine struct {
	store   storage.Store
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewEngine creates an Engine. metrics may be nil.
func NewEngine(store storage.Store, logger *zap.Logger, metrics *telemetry.Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		logger:  logger.Named("engine"),
		metrics: metrics,
	}
}

// Execute validates q, fetches its window and reduces it.
func (e *Engine) Execute(ctx context.Context, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	events, err := e.store.QueryWindow(ctx, q.From, q.To, q.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}

	e.metrics.RecordQuery(q.Kind.String(), len(events))
	e.logger.Debug("query executed",
		zap.String("endpoint", q.Endpoint),
		zap.Stringer("kind", q.Kind),
		zap.Int64("from", q.From),
		zap.Int64("to", q.To),
		zap.Int("matched", len(events)),
	)

	switch q.Kind {
	case Throughput:
		return ReduceThroughput(events, q.Width()), nil
	case Error:
		return ReduceError(events), nil
	default:
		return ReduceLatency(events), nil
	}
}

// ReduceThroughput returns the event count and count/width. An empty
// window yields a zero rate.
func ReduceThroughput(events []storage.StoredEvent, width int64) ThroughputResult {
	total := uint64(len(events))
	rate := 0.0
	if total > 0 {
		rate = float64(total) / float64(width)
	}
	return ThroughputResult{Total: total, Rate: rate}
}

// ReduceError counts events whose error flag is set. Status codes are not
// consulted.
func ReduceError(events []storage.StoredEvent) ErrorResult {
	var errs uint64
	for _, ev := range events {
		if ev.IsError {
			errs++
		}
	}
	total := uint64(len(events))

	percent := 0.0
	if total > 0 {
		percent = float64(errs) / float64(total) * 100
	}
	return ErrorResult{Errors: errs, Total: total, Percent: percent}
}

// ReduceLatency folds latencies into average, min and max, seeding min
// with +Inf and max with -Inf.
func ReduceLatency(events []storage.StoredEvent) LatencyResult {
	res := emptyLatency()
	if len(events) == 0 {
		return res
	}

	var sum float64
	for _, ev := range events {
		sum += ev.Latency
		res.Min = math.Min(res.Min, ev.Latency)
		res.Max = math.Max(res.Max, ev.Latency)
	}
	res.Samples = uint64(len(events))
	res.Average = sum / float64(len(events))
	return res
}
