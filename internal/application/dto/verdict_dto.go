package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// ClassifyRequest is the input DTO for the ClassifyFeatures use case. A nil
// feature is a value the caller sent as null.
type ClassifyRequest struct {
	RequestID string     `json:"request_id,omitempty"`
	Features  []*float64 `json:"features"`
}

// VerdictResponse is the output DTO returned after a classification.
type VerdictResponse struct {
	ClassifiedAt time.Time `json:"classified_at"`
	Prediction   any       `json:"prediction"`
	Threshold    *float64  `json:"threshold,omitempty"`
	Result       string    `json:"result"`
	Mode         string    `json:"mode"`
	ID           uuid.UUID `json:"id"`
}

// FromVerdict maps a domain verdict to the response DTO.
func FromVerdict(v *model.RiskVerdict) VerdictResponse {
	resp := VerdictResponse{
		ID:           v.ID(),
		Prediction:   v.Prediction(),
		Result:       v.Result().String(),
		Mode:         v.Mode().String(),
		ClassifiedAt: v.ClassifiedAt(),
	}
	if v.Mode().UsesThreshold() {
		t := v.Threshold()
		resp.Threshold = &t
	}
	return resp
}

// ModelInfoResponse describes the loaded model and how its output is mapped.
type ModelInfoResponse struct {
	Threshold        *float64                 `json:"threshold,omitempty"`
	HighRiskClass    *valueobject.ClassLabel  `json:"high_risk_class,omitempty"`
	NoRiskLabel      valueobject.ClassLabel   `json:"no_risk_label"`
	Kind             string                   `json:"kind,omitempty"`
	Name             string                   `json:"name,omitempty"`
	Version          string                   `json:"version,omitempty"`
	Mode             string                   `json:"mode"`
	Classes          []valueobject.ClassLabel `json:"classes"`
	FeatureNames     []string                 `json:"feature_names"`
	FeatureCount     int                      `json:"feature_count"`
	HighRiskFallback bool                     `json:"high_risk_fallback"`
}

// FromDescription maps a classifier description to the response DTO.
func FromDescription(d service.ModelDescription) ModelInfoResponse {
	resp := ModelInfoResponse{
		Kind:             d.Kind,
		Name:             d.Name,
		Version:          d.Version,
		Mode:             d.Mode.String(),
		Threshold:        d.Threshold,
		Classes:          d.Classes,
		NoRiskLabel:      d.NoRiskLabel,
		FeatureNames:     d.FeatureNames,
		FeatureCount:     len(d.FeatureNames),
		HighRiskFallback: d.HighRiskFallback,
	}
	if !d.HighRiskClass.IsZero() {
		class := d.HighRiskClass
		resp.HighRiskClass = &class
	}
	return resp
}
