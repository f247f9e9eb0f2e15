package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/pregcare/riskd/internal/infrastructure/telemetry"

// Recorder implements port.MetricsRecorder with OpenTelemetry instruments.
// Through the Prometheus exporter the instruments appear as
// risk_verdicts_total, risk_classification_failures_total and
// risk_classification_duration_seconds.
type Recorder struct {
	verdicts metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRecorder creates the classification instruments on provider.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	verdicts, err := meter.Int64Counter("risk_verdicts",
		metric.WithDescription("Verdicts issued, by result and decision mode."),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create verdict counter: %w", err)
	}

	failures, err := meter.Int64Counter("risk_classification_failures",
		metric.WithDescription("Classifications that produced no verdict, by error kind."),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create failure counter: %w", err)
	}

	duration, err := meter.Float64Histogram("risk_classification_duration",
		metric.WithDescription("Time spent classifying one feature vector."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create duration histogram: %w", err)
	}

	return &Recorder{verdicts: verdicts, failures: failures, duration: duration}, nil
}

// RecordVerdict counts a verdict and its latency.
func (r *Recorder) RecordVerdict(ctx context.Context, mode, result string, elapsed time.Duration) {
	r.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("result", result),
	))
	r.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", "verdict")))
}

// RecordFailure counts a failed classification and its latency.
func (r *Recorder) RecordFailure(ctx context.Context, kind string, elapsed time.Duration) {
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	r.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", "failure")))
}
