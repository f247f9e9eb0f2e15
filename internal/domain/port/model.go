package port

import "github.com/pregcare/riskd/internal/domain/valueobject"

// Model is a loaded, immutable classifier. Rows are feature vectors in schema
// order; every method must be safe for concurrent use.
type Model interface {
	// Classes returns the model's known classes in probability-slot order.
	Classes() []valueobject.ClassLabel

	// Features returns the number of columns every row must have.
	Features() int

	// Predict returns one class label per row.
	Predict(rows [][]float64) ([]valueobject.ClassLabel, error)

	// PredictProba returns one probability distribution per row, with one
	// entry per class in Classes() order.
	PredictProba(rows [][]float64) ([][]float64, error)
}

// ModelMetadata describes where a model came from.
type ModelMetadata struct {
	Kind         string
	Name         string
	Version      string
	FeatureNames []string
}

// MetadataProvider is implemented by models that carry artifact metadata.
type MetadataProvider interface {
	Metadata() ModelMetadata
}
