package model

import "slices"

// FeatureVector is one case to classify, positionally aligned to a Schema.
// Values are never reordered, rescaled or imputed.
type FeatureVector struct {
	schema Schema
	values []float64
}

// NewFeatureVector binds values to schema. It fails with ErrorKindSchemaMismatch
// when the number of values differs from the number of slots.
func NewFeatureVector(schema Schema, values []float64) (FeatureVector, error) {
	if err := schema.Check(values); err != nil {
		return FeatureVector{}, err
	}
	return FeatureVector{schema: schema, values: slices.Clone(values)}, nil
}

// Len returns the number of values.
func (v FeatureVector) Len() int { return len(v.values) }

// Values returns a copy of the values in schema order.
func (v FeatureVector) Values() []float64 { return slices.Clone(v.values) }

// Get returns the value bound to a named slot.
func (v FeatureVector) Get(name string) (float64, bool) {
	i, ok := v.schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Row reshapes the vector into a single-row matrix of N columns.
func (v FeatureVector) Row() [][]float64 {
	return [][]float64{v.Values()}
}
