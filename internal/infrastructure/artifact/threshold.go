package artifact

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pregcare/riskd/internal/domain/model"
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

// LoadThreshold reads a decision threshold from a text file holding a single
// decimal number. Every error it returns is a startup failure.
func LoadThreshold(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, model.NewStartupFailure(fmt.Errorf("failed to read threshold: %w", err))
	}

	t, err := ParseThreshold(string(data))
	if err != nil {
		return 0, model.NewStartupFailure(fmt.Errorf("threshold file %s: %w", path, err))
	}
	return t, nil
}

// ParseThreshold parses a decimal threshold within [0,1]. Surrounding
// whitespace is ignored.
func ParseThreshold(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("threshold is empty")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("threshold %q is not a decimal number", s)
	}
	if d.LessThan(zero) || d.GreaterThan(one) {
		return 0, fmt.Errorf("threshold %s must be within [0,1]", d)
	}
	return d.InexactFloat64(), nil
}
