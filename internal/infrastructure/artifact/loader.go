package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// Supported artifact kinds.
const (
	KindLinear       = "linear"
	KindRandomForest = "random_forest"
)

// envelope is the on-disk form of a model artifact.
type envelope struct {
	Kind         string                   `json:"kind"`
	Name         string                   `json:"name"`
	Version      string                   `json:"version"`
	FeatureNames []string                 `json:"feature_names"`
	Classes      []valueobject.ClassLabel `json:"classes"`
	Coefficients [][]float64              `json:"coefficients"`
	Intercepts   []float64                `json:"intercepts"`
	Forest       json.RawMessage          `json:"forest"`
}

// LoadModel reads a model artifact from path. Every error it returns is a
// startup failure.
func LoadModel(path string) (port.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewStartupFailure(fmt.Errorf("failed to read model artifact: %w", err))
	}

	m, err := DecodeModel(data)
	if err != nil {
		return nil, model.NewStartupFailure(fmt.Errorf("model artifact %s: %w", path, err))
	}
	return m, nil
}

// DecodeModel builds a model from the JSON form of an artifact.
func DecodeModel(data []byte) (port.Model, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	if err := checkClasses(env.Classes); err != nil {
		return nil, err
	}

	meta := port.ModelMetadata{
		Kind:         env.Kind,
		Name:         env.Name,
		Version:      env.Version,
		FeatureNames: env.FeatureNames,
	}

	switch env.Kind {
	case KindLinear:
		return newLinearModel(meta, env.Classes, env.Coefficients, env.Intercepts)
	case KindRandomForest:
		return newForestModel(meta, env.Classes, env.Forest)
	case "":
		return nil, errors.New("artifact kind is required")
	default:
		return nil, fmt.Errorf("unsupported artifact kind %q", env.Kind)
	}
}

func checkClasses(classes []valueobject.ClassLabel) error {
	if len(classes) == 0 {
		return errors.New("artifact declares no classes")
	}
	for i, c := range classes {
		if c.IsCategorical() != classes[0].IsCategorical() {
			return errors.New("artifact classes mix numeric and categorical labels")
		}
		for _, prev := range classes[:i] {
			if prev.Equal(c) {
				return fmt.Errorf("duplicate class %s", c)
			}
		}
	}
	return nil
}

// featureCount returns the declared width, or fallback when no names are declared.
func featureCount(meta port.ModelMetadata, fallback int) (int, error) {
	if len(meta.FeatureNames) == 0 {
		return fallback, nil
	}
	if fallback != len(meta.FeatureNames) {
		return 0, fmt.Errorf("artifact declares %d feature names but its parameters expect %d features",
			len(meta.FeatureNames), fallback)
	}
	return fallback, nil
}
