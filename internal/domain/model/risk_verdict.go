package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pregcare/riskd/internal/domain/event"
	"github.com/pregcare/riskd/internal/domain/valueobject"
	"github.com/pregcare/riskd/pkg/events"
)

// RiskVerdict is the aggregate produced by one classification: the raw model
// output and the risk result derived from it.
type RiskVerdict struct {
	events.EventCollector

	classifiedAt  time.Time
	mode          valueobject.DecisionMode
	result        valueobject.RiskResult
	label         valueobject.ClassLabel
	highRiskClass valueobject.ClassLabel
	probability   float64
	threshold     float64
	id            uuid.UUID
}

// NewLabelVerdict maps a direct class label to a verdict. The no-risk label is
// Low Risk; every other label is High Risk.
func NewLabelVerdict(label, noRiskLabel valueobject.ClassLabel) (*RiskVerdict, error) {
	if label.IsZero() {
		return nil, fmt.Errorf("class label is required")
	}
	if noRiskLabel.IsZero() {
		return nil, fmt.Errorf("no-risk label is required")
	}

	result := valueobject.RiskResultHigh
	if label.Equal(noRiskLabel) {
		result = valueobject.RiskResultLow
	}

	v := &RiskVerdict{
		id:           uuid.New(),
		mode:         valueobject.DecisionModeDirectLabel,
		label:        label,
		result:       result,
		classifiedAt: time.Now().UTC(),
	}
	v.recordOutcome()

	return v, nil
}

// NewProbabilityVerdict maps the probability of the high-risk class to a
// verdict. The result is High Risk iff probability >= threshold.
func NewProbabilityVerdict(probability, threshold float64, highRiskClass valueobject.ClassLabel) (*RiskVerdict, error) {
	if !isUnitInterval(probability) {
		return nil, fmt.Errorf("probability must be within [0,1], got %v", probability)
	}
	if !isUnitInterval(threshold) {
		return nil, fmt.Errorf("threshold must be within [0,1], got %v", threshold)
	}
	if highRiskClass.IsZero() {
		return nil, fmt.Errorf("high-risk class is required")
	}

	v := &RiskVerdict{
		id:            uuid.New(),
		mode:          valueobject.DecisionModeProbabilityThreshold,
		probability:   probability,
		threshold:     threshold,
		highRiskClass: highRiskClass,
		result:        valueobject.RiskResultFromProbability(probability, threshold),
		classifiedAt:  time.Now().UTC(),
	}
	v.recordOutcome()

	return v, nil
}

func isUnitInterval(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= 1
}

func (v *RiskVerdict) recordOutcome() {
	var threshold *float64
	if v.mode.UsesThreshold() {
		t := v.threshold
		threshold = &t
	}

	id := v.id.String()
	v.Record(event.NewRiskClassified(id, v.mode.String(), v.Prediction(), v.result.String(), threshold, v.classifiedAt))

	if v.result.IsHigh() {
		v.Record(event.NewHighRiskDetected(id, v.mode.String(), v.Prediction(), v.classifiedAt))
	}
}

// Prediction returns the raw model output in its native type: the class label
// value (int64 or string) in direct-label mode, the probability otherwise.
func (v *RiskVerdict) Prediction() any {
	if v.mode.UsesThreshold() {
		return v.probability
	}
	return v.label.Value()
}

// --- Accessors ---

func (v *RiskVerdict) ID() uuid.UUID                         { return v.id }
func (v *RiskVerdict) Mode() valueobject.DecisionMode        { return v.mode }
func (v *RiskVerdict) Result() valueobject.RiskResult        { return v.result }
func (v *RiskVerdict) Label() valueobject.ClassLabel         { return v.label }
func (v *RiskVerdict) Probability() float64                  { return v.probability }
func (v *RiskVerdict) Threshold() float64                    { return v.threshold }
func (v *RiskVerdict) HighRiskClass() valueobject.ClassLabel { return v.highRiskClass }
func (v *RiskVerdict) ClassifiedAt() time.Time               { return v.classifiedAt }

// DomainEvents returns all recorded domain events and clears them.
func (v *RiskVerdict) DomainEvents() []events.DomainEvent {
	return v.Drain()
}
