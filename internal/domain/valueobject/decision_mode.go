package valueobject

import "fmt"

// DecisionMode selects how raw classifier output becomes a RiskResult.
type DecisionMode struct {
	value string
}

var (
	// DecisionModeDirectLabel maps the predicted class label straight to a result.
	DecisionModeDirectLabel = DecisionMode{value: "direct_label"}
	// DecisionModeProbabilityThreshold compares the high-risk class probability to a threshold.
	DecisionModeProbabilityThreshold = DecisionMode{value: "probability_threshold"}
)

// DecisionModeFromString parses a configured decision mode.
func DecisionModeFromString(s string) (DecisionMode, error) {
	switch s {
	case "direct_label", "label":
		return DecisionModeDirectLabel, nil
	case "probability_threshold", "threshold":
		return DecisionModeProbabilityThreshold, nil
	default:
		return DecisionMode{}, fmt.Errorf("invalid decision mode: %q", s)
	}
}

// String returns the string representation.
func (m DecisionMode) String() string {
	return m.value
}

// IsZero returns true if the mode has not been set.
func (m DecisionMode) IsZero() bool {
	return m.value == ""
}

// Equal checks equality with another DecisionMode.
func (m DecisionMode) Equal(other DecisionMode) bool {
	return m.value == other.value
}

// UsesThreshold reports whether the mode needs a decision threshold.
func (m DecisionMode) UsesThreshold() bool {
	return m.value == DecisionModeProbabilityThreshold.value
}
