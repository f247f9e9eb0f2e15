package service

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// ClassifierConfig selects how raw model output becomes a verdict.
type ClassifierConfig struct {
	Mode valueobject.DecisionMode

	// Threshold is the cutoff for probability-threshold mode, within [0,1].
	Threshold float64

	// HighRiskClass pins the class whose probability is compared against the
	// threshold. When unset, numeric class 1 is used if the model knows it,
	// otherwise the first class slot.
	HighRiskClass valueobject.ClassLabel

	// NoRiskLabel is the only label mapped to Low Risk in direct-label mode.
	// When unset it is "Normal" for categorical models and 0 otherwise.
	NoRiskLabel valueobject.ClassLabel
}

// ModelDescription summarizes a ready classifier.
type ModelDescription struct {
	Kind             string
	Name             string
	Version          string
	Mode             valueobject.DecisionMode
	Threshold        *float64
	Classes          []valueobject.ClassLabel
	HighRiskClass    valueobject.ClassLabel
	HighRiskSlot     int
	HighRiskFallback bool
	NoRiskLabel      valueobject.ClassLabel
	FeatureNames     []string
}

// RiskClassifier validates feature vectors, invokes the model and maps its
// output to a risk verdict. It is immutable once built and safe for
// concurrent use.
type RiskClassifier struct {
	model            port.Model
	logger           *slog.Logger
	schema           model.Schema
	mode             valueobject.DecisionMode
	classes          []valueobject.ClassLabel
	highRiskClass    valueobject.ClassLabel
	noRiskLabel      valueobject.ClassLabel
	metadata         port.ModelMetadata
	threshold        float64
	highRiskSlot     int
	highRiskFallback bool
}

// NewRiskClassifier builds a ready classifier. Every error it returns is a
// startup failure: the caller must not serve traffic without a classifier.
func NewRiskClassifier(schema model.Schema, m port.Model, cfg ClassifierConfig, logger *slog.Logger) (*RiskClassifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if schema.IsZero() {
		return nil, model.NewStartupFailure(fmt.Errorf("feature schema is required"))
	}
	if m == nil {
		return nil, model.NewStartupFailure(fmt.Errorf("model is required"))
	}
	if cfg.Mode.IsZero() {
		return nil, model.NewStartupFailure(fmt.Errorf("decision mode is required"))
	}

	if w := m.Features(); w != schema.Len() {
		return nil, model.NewStartupFailure(fmt.Errorf("model expects %d features, schema has %d", w, schema.Len()))
	}

	classes := slices.Clone(m.Classes())
	if len(classes) == 0 {
		return nil, model.NewStartupFailure(fmt.Errorf("model declares no classes"))
	}

	c := &RiskClassifier{
		model:   m,
		logger:  logger,
		schema:  schema,
		mode:    cfg.Mode,
		classes: classes,
	}

	if mp, ok := m.(port.MetadataProvider); ok {
		c.metadata = mp.Metadata()
		if err := c.checkFeatureNames(c.metadata.FeatureNames); err != nil {
			return nil, model.NewStartupFailure(err)
		}
	}

	c.noRiskLabel = cfg.NoRiskLabel
	if c.noRiskLabel.IsZero() {
		c.noRiskLabel = defaultNoRiskLabel(classes)
	}

	if cfg.Mode.UsesThreshold() {
		if math.IsNaN(cfg.Threshold) || cfg.Threshold < 0 || cfg.Threshold > 1 {
			return nil, model.NewStartupFailure(fmt.Errorf("threshold must be within [0,1], got %v", cfg.Threshold))
		}
		c.threshold = cfg.Threshold

		if err := c.bindHighRiskClass(cfg.HighRiskClass); err != nil {
			return nil, model.NewStartupFailure(err)
		}
	} else if !slices.ContainsFunc(classes, c.noRiskLabel.Equal) {
		logger.Warn("no-risk label is not among the model classes; every prediction will be High Risk",
			"no_risk_label", c.noRiskLabel.String(),
		)
	}

	logger.Info("risk classifier ready",
		"mode", c.mode.String(),
		"features", schema.Len(),
		"classes", len(classes),
		"model", c.metadata.Name,
	)

	return c, nil
}

func (c *RiskClassifier) checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	declared, err := model.NewSchema(names)
	if err != nil {
		return fmt.Errorf("model feature names: %w", err)
	}
	if !declared.Equal(c.schema) {
		return fmt.Errorf("model was trained on %d features that do not match the %d-feature schema", declared.Len(), c.schema.Len())
	}
	return nil
}

func (c *RiskClassifier) bindHighRiskClass(explicit valueobject.ClassLabel) error {
	if !explicit.IsZero() {
		slot := slices.IndexFunc(c.classes, explicit.Equal)
		if slot < 0 {
			return fmt.Errorf("high-risk class %s is not one of the model classes", explicit)
		}
		c.highRiskSlot = slot
		c.highRiskClass = explicit
		return nil
	}

	one := valueobject.NumericLabel(1)
	if slot := slices.IndexFunc(c.classes, one.Equal); slot >= 0 {
		c.highRiskSlot = slot
		c.highRiskClass = one
		return nil
	}

	c.highRiskSlot = 0
	c.highRiskClass = c.classes[0]
	c.highRiskFallback = true
	c.logger.Warn("model has no class 1; using the first class slot as high risk",
		"high_risk_class", c.highRiskClass.String(),
	)
	return nil
}

func defaultNoRiskLabel(classes []valueobject.ClassLabel) valueobject.ClassLabel {
	if classes[0].IsCategorical() {
		return valueobject.CategoricalLabel("Normal")
	}
	return valueobject.NumericLabel(0)
}

// Classify validates values against the schema, invokes the model and maps
// its output to a verdict. A schema mismatch never reaches the model.
func (c *RiskClassifier) Classify(values []float64) (verdict *model.RiskVerdict, err error) {
	vector, err := model.NewFeatureVector(c.schema, values)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			verdict = nil
			err = model.NewInferenceFailure(fmt.Errorf("model panicked: %v", r))
		}
		if model.KindOf(err) == model.ErrorKindInferenceFailure {
			c.logger.Warn("inference failed", "mode", c.mode.String(), "error", err)
		}
	}()

	if c.mode.UsesThreshold() {
		return c.classifyProbability(vector)
	}
	return c.classifyLabel(vector)
}

func (c *RiskClassifier) classifyLabel(vector model.FeatureVector) (*model.RiskVerdict, error) {
	labels, err := c.model.Predict(vector.Row())
	if err != nil {
		return nil, model.NewInferenceFailure(err)
	}
	if len(labels) != 1 {
		return nil, model.NewInferenceFailure(fmt.Errorf("model returned %d labels for one row", len(labels)))
	}

	verdict, err := model.NewLabelVerdict(labels[0], c.noRiskLabel)
	if err != nil {
		return nil, model.NewInferenceFailure(err)
	}
	return verdict, nil
}

func (c *RiskClassifier) classifyProbability(vector model.FeatureVector) (*model.RiskVerdict, error) {
	dist, err := c.model.PredictProba(vector.Row())
	if err != nil {
		return nil, model.NewInferenceFailure(err)
	}
	if len(dist) != 1 {
		return nil, model.NewInferenceFailure(fmt.Errorf("model returned %d distributions for one row", len(dist)))
	}
	if len(dist[0]) != len(c.classes) {
		return nil, model.NewInferenceFailure(fmt.Errorf("model returned %d probabilities for %d classes", len(dist[0]), len(c.classes)))
	}

	verdict, err := model.NewProbabilityVerdict(dist[0][c.highRiskSlot], c.threshold, c.highRiskClass)
	if err != nil {
		return nil, model.NewInferenceFailure(err)
	}
	return verdict, nil
}

// Describe returns the classifier's configuration as bound at startup.
func (c *RiskClassifier) Describe() ModelDescription {
	d := ModelDescription{
		Kind:         c.metadata.Kind,
		Name:         c.metadata.Name,
		Version:      c.metadata.Version,
		Mode:         c.mode,
		Classes:      slices.Clone(c.classes),
		NoRiskLabel:  c.noRiskLabel,
		FeatureNames: c.schema.Names(),
	}
	if c.mode.UsesThreshold() {
		t := c.threshold
		d.Threshold = &t
		d.HighRiskClass = c.highRiskClass
		d.HighRiskSlot = c.highRiskSlot
		d.HighRiskFallback = c.highRiskFallback
	}
	return d
}

// Schema returns the feature schema the classifier validates against.
func (c *RiskClassifier) Schema() model.Schema { return c.schema }
