package model

import (
	"fmt"
	"slices"
)

var defaultFeatureNames = []string{
	"Age",
	"BMI",
	"BMI_Category",
	"DiastolicBP",
	"BP_Risk",
	"BodyTemp",
	"HeartRate",
	"Hematocrit",
	"Anemia_Risk",
	"SerumCreatinine",
	"WBC",
	"USG_AC",
	"USG_BPD",
	"USG_FL",
	"Fetal_Growth_Stress",
	"GestationalAge_Weeks",
	"Trimester",
	"OGTT_Fasting",
	"OGTT_1hr",
	"OGTT_2hr",
	"Metabolic_Risk",
}

// Schema is the ordered list of feature slots a model was trained on.
type Schema struct {
	names []string
	index map[string]int
}

// DefaultSchema returns the 21-slot pregnancy-risk schema.
func DefaultSchema() Schema {
	s, _ := NewSchema(defaultFeatureNames)
	return s
}

// NewSchema creates a schema from ordered, unique, non-empty slot names.
func NewSchema(names []string) (Schema, error) {
	if len(names) == 0 {
		return Schema{}, fmt.Errorf("schema must have at least one feature")
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return Schema{}, fmt.Errorf("feature %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return Schema{}, fmt.Errorf("duplicate feature name %q", name)
		}
		index[name] = i
	}

	return Schema{names: slices.Clone(names), index: index}, nil
}

// Len returns the number of slots.
func (s Schema) Len() int { return len(s.names) }

// Names returns a copy of the slot names in order.
func (s Schema) Names() []string { return slices.Clone(s.names) }

// Index returns the position of a named slot.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// IsZero returns true if the schema has no slots.
func (s Schema) IsZero() bool { return len(s.names) == 0 }

// Equal reports whether both schemas have the same names in the same order.
func (s Schema) Equal(other Schema) bool {
	return slices.Equal(s.names, other.names)
}

// Check fails with a schema mismatch when values does not have one value per slot.
func (s Schema) Check(values []float64) error {
	if len(values) != len(s.names) {
		return NewSchemaMismatch(len(s.names), len(values))
	}
	return nil
}

// Resolve converts decoded input, where a nil entry is a null or missing
// value, into plain values. Length is checked before any entry. A nil entry
// is an inference failure naming the slot; it is never replaced by a default.
func (s Schema) Resolve(values []*float64) ([]float64, error) {
	if len(values) != len(s.names) {
		return nil, NewSchemaMismatch(len(s.names), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			return nil, NewInferenceFailure(fmt.Errorf("feature %d (%s) is missing or not a number", i, s.names[i]))
		}
		out[i] = *v
	}
	return out, nil
}
