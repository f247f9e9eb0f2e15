package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	randomforest "github.com/malaschitz/randomForest"

	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// forestModel evaluates a trained random forest. Vote slot i is the
// probability of classes[i].
type forestModel struct {
	meta     port.ModelMetadata
	classes  []valueobject.ClassLabel
	forest   *randomforest.Forest
	features int
}

func newForestModel(meta port.ModelMetadata, classes []valueobject.ClassLabel, raw json.RawMessage) (*forestModel, error) {
	if len(raw) == 0 {
		return nil, errors.New("random forest artifact has no forest")
	}
	if len(meta.FeatureNames) == 0 {
		return nil, errors.New("random forest artifact must declare feature_names")
	}

	forest := &randomforest.Forest{}
	if err := json.Unmarshal(raw, forest); err != nil {
		return nil, fmt.Errorf("failed to decode forest: %w", err)
	}
	// Training data is not needed to vote.
	forest.Data = randomforest.ForestData{}

	m := &forestModel{
		meta:     meta,
		classes:  classes,
		forest:   forest,
		features: len(meta.FeatureNames),
	}

	votes, err := m.vote(make([]float64, m.features))
	if err != nil {
		return nil, fmt.Errorf("forest does not evaluate: %w", err)
	}
	if len(votes) != len(classes) {
		return nil, fmt.Errorf("forest votes over %d classes but the artifact declares %d", len(votes), len(classes))
	}

	return m, nil
}

func (m *forestModel) Classes() []valueobject.ClassLabel { return m.classes }

func (m *forestModel) Features() int { return m.features }

func (m *forestModel) Metadata() port.ModelMetadata { return m.meta }

func (m *forestModel) vote(row []float64) (votes []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("forest vote panicked: %v", r)
		}
	}()
	return m.forest.Vote(row), nil
}

// PredictProba returns the forest's votes normalized to sum to one.
func (m *forestModel) PredictProba(rows [][]float64) ([][]float64, error) {
	if err := checkRows(rows, m.features); err != nil {
		return nil, err
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		votes, err := m.vote(row)
		if err != nil {
			return nil, err
		}
		if len(votes) != len(m.classes) {
			return nil, fmt.Errorf("forest returned %d votes for %d classes", len(votes), len(m.classes))
		}

		var total float64
		for _, v := range votes {
			if math.IsNaN(v) || v < 0 {
				return nil, fmt.Errorf("forest returned an invalid vote %v", v)
			}
			total += v
		}
		if total == 0 {
			return nil, errors.New("forest returned no votes")
		}

		dist := make([]float64, len(votes))
		for j, v := range votes {
			dist[j] = v / total
		}
		out[i] = dist
	}
	return out, nil
}

// Predict returns the class with the most votes for each row.
func (m *forestModel) Predict(rows [][]float64) ([]valueobject.ClassLabel, error) {
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
