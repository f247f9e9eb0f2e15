package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pregcare/riskd/internal/application/dto"
	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/pkg/events"
)

const tracerName = "github.com/pregcare/riskd/internal/application/usecase"

// DefaultPublishTimeout bounds how long a request waits on event publishing.
const DefaultPublishTimeout = 2 * time.Second

// ClassifyFeatures is the use case for turning a feature vector into a risk verdict.
type ClassifyFeatures struct {
	classifier     *service.RiskClassifier
	publisher      port.EventPublisher
	metrics        port.MetricsRecorder
	logger         *slog.Logger
	tracer         trace.Tracer
	publishTimeout time.Duration
}

// NewClassifyFeatures creates a new ClassifyFeatures use case. The publisher
// and metrics recorder are optional.
func NewClassifyFeatures(
	classifier *service.RiskClassifier,
	publisher port.EventPublisher,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *ClassifyFeatures {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyFeatures{
		classifier:     classifier,
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		tracer:         otel.Tracer(tracerName),
		publishTimeout: DefaultPublishTimeout,
	}
}

// WithPublishTimeout sets the publishing deadline. A non-positive d leaves
// publishing bounded only by the request context.
func (uc *ClassifyFeatures) WithPublishTimeout(d time.Duration) *ClassifyFeatures {
	uc.publishTimeout = d
	return uc
}

// Execute classifies the request's features and publishes the verdict's events.
// Event publishing is best-effort: a failure is logged and the verdict is still returned.
func (uc *ClassifyFeatures) Execute(ctx context.Context, req dto.ClassifyRequest) (dto.VerdictResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "ClassifyFeatures.Execute",
		trace.WithAttributes(
			attribute.String("request.id", req.RequestID),
			attribute.Int("features.count", len(req.Features)),
		),
	)
	defer span.End()

	start := time.Now()

	// 1. Run the classifier.
	verdict, err := uc.classify(req.Features)
	if err != nil {
		kind := model.KindOf(err)
		if kind == "" {
			kind = "UNKNOWN"
		}
		if uc.metrics != nil {
			uc.metrics.RecordFailure(ctx, kind.String(), time.Since(start))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		return dto.VerdictResponse{}, fmt.Errorf("failed to classify features: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.RecordVerdict(ctx, verdict.Mode().String(), verdict.Result().String(), time.Since(start))
	}
	span.SetAttributes(
		attribute.String("verdict.id", verdict.ID().String()),
		attribute.String("verdict.result", verdict.Result().String()),
	)

	// 2. Publish domain events.
	evts := verdict.DomainEvents()
	if len(evts) > 0 && uc.publisher != nil {
		if err := uc.publish(ctx, evts); err != nil {
			uc.logger.Warn("failed to publish verdict events",
				"verdict_id", verdict.ID().String(),
				"request_id", req.RequestID,
				"error", err,
			)
		}
	}

	uc.logger.Debug("features classified",
		"verdict_id", verdict.ID().String(),
		"request_id", req.RequestID,
		"result", verdict.Result().String(),
	)

	return dto.FromVerdict(verdict), nil
}

func (uc *ClassifyFeatures) classify(features []*float64) (*model.RiskVerdict, error) {
	values, err := uc.classifier.Schema().Resolve(features)
	if err != nil {
		return nil, err
	}
	return uc.classifier.Classify(values)
}

func (uc *ClassifyFeatures) publish(ctx context.Context, evts []events.DomainEvent) error {
	if uc.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.publishTimeout)
		defer cancel()
	}
	return uc.publisher.Publish(ctx, evts...)
}
