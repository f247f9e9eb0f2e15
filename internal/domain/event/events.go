package event

import (
	"time"

	"github.com/pregcare/riskd/pkg/events"
)

const (
	// EventTypeRiskClassified is emitted for every verdict.
	EventTypeRiskClassified = "risk.verdict.classified"

	// EventTypeHighRiskDetected is emitted when a verdict is High Risk.
	EventTypeHighRiskDetected = "risk.verdict.high_risk"

	// AggregateTypeRiskVerdict identifies the aggregate that records these events.
	AggregateTypeRiskVerdict = "RiskVerdict"
)

// RiskClassified is published after a feature vector has been classified.
// Prediction is the raw model output: a class label or a probability.
type RiskClassified struct {
	events.BaseEvent
	VerdictID    string    `json:"verdict_id"`
	Mode         string    `json:"mode"`
	Prediction   any       `json:"prediction"`
	Result       string    `json:"result"`
	Threshold    *float64  `json:"threshold,omitempty"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// NewRiskClassified creates a RiskClassified event.
func NewRiskClassified(verdictID, mode string, prediction any, result string, threshold *float64, classifiedAt time.Time) RiskClassified {
	return RiskClassified{
		BaseEvent:    events.NewBaseEvent(EventTypeRiskClassified, verdictID, AggregateTypeRiskVerdict),
		VerdictID:    verdictID,
		Mode:         mode,
		Prediction:   prediction,
		Result:       result,
		Threshold:    threshold,
		ClassifiedAt: classifiedAt,
	}
}

// HighRiskDetected is published when a case is classified High Risk, so that
// downstream consumers can alert a clinician.
type HighRiskDetected struct {
	events.BaseEvent
	VerdictID  string    `json:"verdict_id"`
	Mode       string    `json:"mode"`
	Prediction any       `json:"prediction"`
	DetectedAt time.Time `json:"detected_at"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(verdictID, mode string, prediction any, detectedAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:  events.NewBaseEvent(EventTypeHighRiskDetected, verdictID, AggregateTypeRiskVerdict),
		VerdictID:  verdictID,
		Mode:       mode,
		Prediction: prediction,
		DetectedAt: detectedAt,
	}
}
