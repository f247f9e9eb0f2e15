package valueobject

import "fmt"

// RiskResult is an immutable value object holding the user-facing risk category.
// Only the two values below exist.
type RiskResult struct {
	value string
}

var (
	RiskResultLow  = RiskResult{value: "Low Risk"}
	RiskResultHigh = RiskResult{value: "High Risk"}
)

// RiskResultFromString reconstructs a RiskResult from its string representation.
func RiskResultFromString(s string) (RiskResult, error) {
	switch s {
	case "Low Risk":
		return RiskResultLow, nil
	case "High Risk":
		return RiskResultHigh, nil
	default:
		return RiskResult{}, fmt.Errorf("invalid risk result: %q", s)
	}
}

// RiskResultFromProbability returns High Risk when probability >= threshold.
func RiskResultFromProbability(probability, threshold float64) RiskResult {
	if probability >= threshold {
		return RiskResultHigh
	}
	return RiskResultLow
}

// String returns the string representation.
func (r RiskResult) String() string {
	return r.value
}

// IsZero returns true if the RiskResult has not been set.
func (r RiskResult) IsZero() bool {
	return r.value == ""
}

// IsHigh returns true for High Risk.
func (r RiskResult) IsHigh() bool {
	return r.value == RiskResultHigh.value
}

// Equal checks equality with another RiskResult.
func (r RiskResult) Equal(other RiskResult) bool {
	return r.value == other.value
}
