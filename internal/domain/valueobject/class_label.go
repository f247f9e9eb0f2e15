package valueobject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ClassLabel is a class as emitted by a classifier. It keeps the label's native
// type: numeric labels (0, 1, 2 ...) and categorical labels ("Normal", "GDM")
// never compare equal to each other, so NumericLabel(1) != CategoricalLabel("1").
type ClassLabel struct {
	text        string
	num         int64
	categorical bool
	set         bool
}

// NumericLabel creates an integer class label.
func NumericLabel(n int64) ClassLabel {
	return ClassLabel{num: n, set: true}
}

// CategoricalLabel creates a string class label.
func CategoricalLabel(s string) ClassLabel {
	return ClassLabel{text: s, categorical: true, set: true}
}

// ParseClassLabel reads a label from configuration text. Integer literals become
// numeric labels; anything else is categorical. A leading '=' forces the rest of
// the text to be categorical ("=1" is the string label "1").
func ParseClassLabel(s string) (ClassLabel, error) {
	if s == "" {
		return ClassLabel{}, fmt.Errorf("class label is empty")
	}
	if s[0] == '=' {
		if len(s) == 1 {
			return ClassLabel{}, fmt.Errorf("class label is empty")
		}
		return CategoricalLabel(s[1:]), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NumericLabel(n), nil
	}
	return CategoricalLabel(s), nil
}

// ClassLabelFromFloat converts a numeric model output into a label. The value
// must be integral (1.0 is accepted, 1.5 is not).
func ClassLabelFromFloat(f float64) (ClassLabel, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return ClassLabel{}, fmt.Errorf("numeric class label must be an integer, got %v", f)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return ClassLabel{}, fmt.Errorf("numeric class label out of range: %v", f)
	}
	return NumericLabel(int64(f)), nil
}

// Value returns the label in its native type: int64 or string.
func (l ClassLabel) Value() any {
	if l.categorical {
		return l.text
	}
	return l.num
}

// IsCategorical reports whether the label is a string label.
func (l ClassLabel) IsCategorical() bool {
	return l.categorical
}

// IsZero returns true if the label has not been set.
func (l ClassLabel) IsZero() bool {
	return !l.set
}

// Equal compares type and value.
func (l ClassLabel) Equal(other ClassLabel) bool {
	return l == other
}

// String returns a display form. Categorical labels are returned verbatim.
func (l ClassLabel) String() string {
	if l.categorical {
		return l.text
	}
	return strconv.FormatInt(l.num, 10)
}

// MarshalJSON encodes the label in its native JSON type.
func (l ClassLabel) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Value())
}

// UnmarshalJSON accepts a JSON string or an integral JSON number.
func (l *ClassLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("class label must not be null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode class label: %w", err)
		}
		*l = CategoricalLabel(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("class label must be a string or a number: %s", data)
	}
	parsed, err := ClassLabelFromFloat(f)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
