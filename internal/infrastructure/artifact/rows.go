package artifact

import (
	"fmt"
	"math"
)

// checkRows rejects ragged rows and non-finite values before they reach the
// model arithmetic.
func checkRows(rows [][]float64, width int) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to score")
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("row %d has %d columns, model expects %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d column %d is not a finite number", i, j)
			}
		}
	}
	return nil
}

// argmax returns the index of the largest value; ties resolve to the lowest index.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
