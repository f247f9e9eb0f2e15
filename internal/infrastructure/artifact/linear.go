package artifact

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// linearModel is a logistic (binary) or softmax (multiclass) regression.
// A binary model has a single weight row scoring classes[1]; a multiclass
// model has one weight row per class.
type linearModel struct {
	meta       port.ModelMetadata
	classes    []valueobject.ClassLabel
	weights    *mat.Dense
	intercepts []float64
	features   int
}

func newLinearModel(meta port.ModelMetadata, classes []valueobject.ClassLabel, coef [][]float64, intercepts []float64) (*linearModel, error) {
	if len(classes) < 2 {
		return nil, errors.New("linear model needs at least two classes")
	}
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, errors.New("linear model has no coefficients")
	}

	rows := len(coef)
	if rows == 1 && len(classes) != 2 {
		return nil, fmt.Errorf("a single coefficient row only fits a binary model, got %d classes", len(classes))
	}
	if rows > 1 && rows != len(classes) {
		return nil, fmt.Errorf("linear model has %d coefficient rows for %d classes", rows, len(classes))
	}
	if len(intercepts) != rows {
		return nil, fmt.Errorf("linear model has %d intercepts for %d coefficient rows", len(intercepts), rows)
	}

	width := len(coef[0])
	flat := make([]float64, 0, rows*width)
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("coefficient row %d has %d values, expected %d", i, len(row), width)
		}
		flat = append(flat, row...)
	}
	for _, v := range append(append([]float64(nil), flat...), intercepts...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("linear model parameters must be finite")
		}
	}

	features, err := featureCount(meta, width)
	if err != nil {
		return nil, err
	}

	return &linearModel{
		meta:       meta,
		classes:    classes,
		weights:    mat.NewDense(rows, width, flat),
		intercepts: append([]float64(nil), intercepts...),
		features:   features,
	}, nil
}

func (m *linearModel) Classes() []valueobject.ClassLabel { return m.classes }

func (m *linearModel) Features() int { return m.features }

func (m *linearModel) Metadata() port.ModelMetadata { return m.meta }

// PredictProba scores rows as X·Wᵀ + b and maps scores to class probabilities.
func (m *linearModel) PredictProba(rows [][]float64) ([][]float64, error) {
	if err := checkRows(rows, m.features); err != nil {
		return nil, err
	}

	flat := make([]float64, 0, len(rows)*m.features)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	x := mat.NewDense(len(rows), m.features, flat)

	var scores mat.Dense
	scores.Mul(x, m.weights.T())

	out := make([][]float64, len(rows))
	for i := range rows {
		z := mat.Row(nil, i, &scores)
		for j := range z {
			z[j] += m.intercepts[j]
		}
		if len(z) == 1 {
			p := sigmoid(z[0])
			out[i] = []float64{1 - p, p}
		} else {
			out[i] = softmax(z)
		}
	}
	return out, nil
}

// Predict returns the most probable class of each row.
func (m *linearModel) Predict(rows [][]float64) ([]valueobject.ClassLabel, error) {
	dist, err := m.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	labels := make([]valueobject.ClassLabel, len(dist))
	for i, p := range dist {
		labels[i] = m.classes[argmax(p)]
	}
	return labels, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(z []float64) []float64 {
	peak := z[argmax(z)]
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
