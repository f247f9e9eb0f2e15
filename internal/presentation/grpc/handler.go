package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pregcare/riskd/internal/application/dto"
	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// ClassifyRequest is the request message for RiskService.Classify.
type ClassifyRequest struct {
	RequestID string     `json:"request_id,omitempty"`
	Features  []*float64 `json:"features"`
}

// ClassifyResponse is the response message for RiskService.Classify.
type ClassifyResponse struct {
	VerdictID    string    `json:"verdict_id"`
	Prediction   any       `json:"prediction"`
	Result       string    `json:"result"`
	Mode         string    `json:"mode"`
	Threshold    *float64  `json:"threshold,omitempty"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// GetModelInfoRequest is the request message for RiskService.GetModelInfo.
type GetModelInfoRequest struct{}

// GetModelInfoResponse is the response message for RiskService.GetModelInfo.
type GetModelInfoResponse struct {
	Kind             string                   `json:"kind,omitempty"`
	Name             string                   `json:"name,omitempty"`
	Version          string                   `json:"version,omitempty"`
	Mode             string                   `json:"mode"`
	Threshold        *float64                 `json:"threshold,omitempty"`
	Classes          []valueobject.ClassLabel `json:"classes"`
	HighRiskClass    *valueobject.ClassLabel  `json:"high_risk_class,omitempty"`
	HighRiskFallback bool                     `json:"high_risk_fallback"`
	NoRiskLabel      valueobject.ClassLabel   `json:"no_risk_label"`
	FeatureNames     []string                 `json:"feature_names"`
}

// RiskHandler implements RiskServiceServer.
type RiskHandler struct {
	UnimplementedRiskServiceServer
	classify *usecase.ClassifyFeatures
	describe *usecase.DescribeModel
	logger   *slog.Logger
}

// NewRiskHandler creates a new gRPC handler.
func NewRiskHandler(classify *usecase.ClassifyFeatures, describe *usecase.DescribeModel, logger *slog.Logger) *RiskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskHandler{
		classify: classify,
		describe: describe,
		logger:   logger,
	}
}

// Classify classifies one feature vector.
func (h *RiskHandler) Classify(ctx context.Context, req *ClassifyRequest) (*ClassifyResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.classify.Execute(ctx, dto.ClassifyRequest{
		RequestID: req.RequestID,
		Features:  req.Features,
	})
	if err != nil {
		return nil, h.toStatus(err)
	}

	return &ClassifyResponse{
		VerdictID:    resp.ID.String(),
		Prediction:   resp.Prediction,
		Result:       resp.Result,
		Mode:         resp.Mode,
		Threshold:    resp.Threshold,
		ClassifiedAt: resp.ClassifiedAt,
	}, nil
}

// GetModelInfo describes the loaded model.
func (h *RiskHandler) GetModelInfo(_ context.Context, _ *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	info := h.describe.Execute()
	return &GetModelInfoResponse{
		Kind:             info.Kind,
		Name:             info.Name,
		Version:          info.Version,
		Mode:             info.Mode,
		Threshold:        info.Threshold,
		Classes:          info.Classes,
		HighRiskClass:    info.HighRiskClass,
		HighRiskFallback: info.HighRiskFallback,
		NoRiskLabel:      info.NoRiskLabel,
		FeatureNames:     info.FeatureNames,
	}, nil
}

func (h *RiskHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrSchemaMismatch), errors.Is(err, model.ErrInferenceFailure):
		var ce *model.ClassificationError
		if errors.As(err, &ce) {
			return status.Error(codes.InvalidArgument, ce.Error())
		}
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("classification failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
