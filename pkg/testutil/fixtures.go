package testutil

import (
	"github.com/google/uuid"
)

// FeatureCount is the width of a pregnancy-risk feature vector.
const FeatureCount = 21

// Fixed IDs for deterministic testing.
var (
	TestRequestID = "req-00000001"
	TestVerdictID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
)

// Features returns a vector of n copies of v.
func Features(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ValidFeatures returns a realistic low-risk pregnancy-risk vector.
func ValidFeatures() []float64 {
	return []float64{
		27, 22.4, 1, 78, 0, 98.2, 80, 36.5, 0, 0.7,
		7.8, 30.1, 8.6, 6.2, 0, 28, 3, 85, 150, 120,
		0,
	}
}

// FeaturePtrs returns values the way a JSON array without nulls decodes into
// []*float64.
func FeaturePtrs(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}

// WithNull returns FeaturePtrs(values) with slot i left nil.
func WithNull(values []float64, i int) []*float64 {
	out := FeaturePtrs(values)
	out[i] = nil
	return out
}
