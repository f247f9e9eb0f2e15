package port

import (
	"context"
	"time"
)

// MetricsRecorder records classification outcomes.
type MetricsRecorder interface {
	RecordVerdict(ctx context.Context, mode, result string, elapsed time.Duration)
	RecordFailure(ctx context.Context, kind string, elapsed time.Duration)
}
