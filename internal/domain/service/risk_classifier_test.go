package service_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// --- Stub model ---

type stubModel struct {
	mu       sync.Mutex
	classes  []valueobject.ClassLabel
	labels   []valueobject.ClassLabel
	dist     [][]float64
	err      error
	panicMsg string
	width    int
	calls    int
	lastRows [][]float64
}

func (m *stubModel) Classes() []valueobject.ClassLabel { return m.classes }

// Features reports width, or the default schema length when width is unset.
func (m *stubModel) Features() int {
	if m.width == 0 {
		return model.DefaultSchema().Len()
	}
	return m.width
}

func (m *stubModel) record(rows [][]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastRows = rows
}

func (m *stubModel) Predict(rows [][]float64) ([]valueobject.ClassLabel, error) {
	m.record(rows)
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.labels, m.err
}

func (m *stubModel) PredictProba(rows [][]float64) ([][]float64, error) {
	m.record(rows)
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.dist, m.err
}

func (m *stubModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type describedModel struct {
	*stubModel
	metadata port.ModelMetadata
}

func (m describedModel) Metadata() port.ModelMetadata { return m.metadata }

func numericClasses(n ...int64) []valueobject.ClassLabel {
	out := make([]valueobject.ClassLabel, len(n))
	for i, v := range n {
		out[i] = valueobject.NumericLabel(v)
	}
	return out
}

func categoricalClasses(s ...string) []valueobject.ClassLabel {
	out := make([]valueobject.ClassLabel, len(s))
	for i, v := range s {
		out[i] = valueobject.CategoricalLabel(v)
	}
	return out
}

func sampleVector() []float64 {
	return []float64{25, 22.5, 0, 80, 0, 36.6, 75, 38, 0, 0.8, 7.0, 30, 9, 6, 0, 20, 2, 90, 130, 110, 0}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func directConfig() service.ClassifierConfig {
	return service.ClassifierConfig{Mode: valueobject.DecisionModeDirectLabel}
}

func thresholdConfig(threshold float64) service.ClassifierConfig {
	return service.ClassifierConfig{Mode: valueobject.DecisionModeProbabilityThreshold, Threshold: threshold}
}

func newClassifier(t *testing.T, m port.Model, cfg service.ClassifierConfig) *service.RiskClassifier {
	t.Helper()
	c, err := service.NewRiskClassifier(model.DefaultSchema(), m, cfg, discardLogger())
	require.NoError(t, err)
	return c
}

// --- Decision modes ---

func TestClassify_DirectLabelZeroIsLowRisk(t *testing.T) {
	m := &stubModel{classes: numericClasses(0, 1), labels: numericClasses(0)}
	c := newClassifier(t, m, directConfig())

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)

	assert.Equal(t, int64(0), verdict.Prediction())
	assert.Equal(t, "Low Risk", verdict.Result().String())
	require.Len(t, m.lastRows, 1)
	assert.Equal(t, sampleVector(), m.lastRows[0], "values reach the model unchanged as one row")
}

func TestClassify_ProbabilityAboveThresholdIsHighRisk(t *testing.T) {
	m := &stubModel{classes: numericClasses(0, 1), dist: [][]float64{{0.38, 0.62}}}
	c := newClassifier(t, m, thresholdConfig(0.5))

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)

	assert.Equal(t, 0.62, verdict.Prediction())
	assert.Equal(t, "High Risk", verdict.Result().String())
}

func TestClassify_SchemaMismatchNeverInvokesModel(t *testing.T) {
	for _, cfg := range []service.ClassifierConfig{directConfig(), thresholdConfig(0.5)} {
		t.Run(cfg.Mode.String(), func(t *testing.T) {
			m := &stubModel{classes: numericClasses(0, 1), labels: numericClasses(0), dist: [][]float64{{0.5, 0.5}}}
			c := newClassifier(t, m, cfg)

			verdict, err := c.Classify(sampleVector()[:18])
			require.Error(t, err)
			assert.Nil(t, verdict)

			var ce *model.ClassificationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, model.ErrorKindSchemaMismatch, ce.Kind)
			assert.Equal(t, 21, ce.Expected)
			assert.Equal(t, 18, ce.Actual)
			assert.Equal(t, 0, m.Calls())
		})
	}
}

func TestClassify_CategoricalLabels(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{label: "Normal", expected: "Low Risk"},
		{label: "GDM", expected: "High Risk"},
		{label: "Preeclampsia", expected: "High Risk"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			m := &stubModel{
				classes: categoricalClasses("GDM", "Normal", "Preeclampsia"),
				labels:  categoricalClasses(tt.label),
			}
			c := newClassifier(t, m, directConfig())

			verdict, err := c.Classify(sampleVector())
			require.NoError(t, err)
			assert.Equal(t, tt.label, verdict.Prediction())
			assert.Equal(t, tt.expected, verdict.Result().String())
		})
	}
}

// --- Properties ---

func TestClassify_RejectsEveryWrongLength(t *testing.T) {
	m := &stubModel{classes: numericClasses(0, 1), labels: numericClasses(0)}
	c := newClassifier(t, m, directConfig())

	for n := 0; n <= 30; n++ {
		if n == 21 {
			continue
		}
		_, err := c.Classify(make([]float64, n))
		assert.ErrorIs(t, err, model.ErrSchemaMismatch, "length %d", n)
	}
	assert.Equal(t, 0, m.Calls())
}

func TestClassify_DirectLabelOverFullLabelSet(t *testing.T) {
	classes := numericClasses(0, 1, 2, 3)
	for _, label := range classes {
		t.Run(label.String(), func(t *testing.T) {
			m := &stubModel{classes: classes, labels: []valueobject.ClassLabel{label}}
			c := newClassifier(t, m, directConfig())

			verdict, err := c.Classify(sampleVector())
			require.NoError(t, err)
			if label.Equal(valueobject.NumericLabel(0)) {
				assert.Equal(t, "Low Risk", verdict.Result().String())
			} else {
				assert.Equal(t, "High Risk", verdict.Result().String())
			}
		})
	}
}

func TestClassify_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		threshold   float64
		high        bool
	}{
		{name: "below", probability: 0.49, threshold: 0.5, high: false},
		{name: "equal", probability: 0.5, threshold: 0.5, high: true},
		{name: "above", probability: 0.51, threshold: 0.5, high: true},
		{name: "zero threshold", probability: 0, threshold: 0, high: true},
		{name: "unit threshold", probability: 0.99, threshold: 1, high: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &stubModel{classes: numericClasses(0, 1), dist: [][]float64{{1 - tt.probability, tt.probability}}}
			c := newClassifier(t, m, thresholdConfig(tt.threshold))

			verdict, err := c.Classify(sampleVector())
			require.NoError(t, err)
			assert.Equal(t, tt.high, verdict.Result().IsHigh())
			assert.Equal(t, tt.probability, verdict.Prediction())
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	m := &stubModel{classes: numericClasses(0, 1), dist: [][]float64{{0.38, 0.62}}}
	c := newClassifier(t, m, thresholdConfig(0.5))

	first, err := c.Classify(sampleVector())
	require.NoError(t, err)
	second, err := c.Classify(sampleVector())
	require.NoError(t, err)

	assert.Equal(t, first.Prediction(), second.Prediction())
	assert.Equal(t, first.Result(), second.Result())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestClassify_Concurrent(t *testing.T) {
	m := &stubModel{classes: numericClasses(0, 1), labels: numericClasses(1)}
	c := newClassifier(t, m, directConfig())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdict, err := c.Classify(sampleVector())
			assert.NoError(t, err)
			assert.True(t, verdict.Result().IsHigh())
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, m.Calls())
}

// --- High-risk class binding ---

func TestHighRiskClass_BindsNumericOne(t *testing.T) {
	m := &stubModel{classes: numericClasses(1, 0), dist: [][]float64{{0.7, 0.3}}}
	c := newClassifier(t, m, thresholdConfig(0.5))

	desc := c.Describe()
	assert.True(t, desc.HighRiskClass.Equal(valueobject.NumericLabel(1)))
	assert.Equal(t, 0, desc.HighRiskSlot)
	assert.False(t, desc.HighRiskFallback)

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 0.7, verdict.Prediction(), "probability is read from the slot of class 1")
	assert.True(t, verdict.Result().IsHigh())
}

func TestHighRiskClass_FallsBackToFirstSlot(t *testing.T) {
	m := &stubModel{classes: categoricalClasses("GDM", "Normal"), dist: [][]float64{{0.2, 0.8}}}
	c := newClassifier(t, m, thresholdConfig(0.5))

	desc := c.Describe()
	assert.True(t, desc.HighRiskFallback)
	assert.Equal(t, 0, desc.HighRiskSlot)
	assert.True(t, desc.HighRiskClass.Equal(valueobject.CategoricalLabel("GDM")))

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 0.2, verdict.Prediction())
	assert.False(t, verdict.Result().IsHigh())
}

func TestHighRiskClass_StringOneIsNotNumericOne(t *testing.T) {
	m := &stubModel{classes: categoricalClasses("0", "1"), dist: [][]float64{{0.9, 0.1}}}
	c := newClassifier(t, m, thresholdConfig(0.5))

	assert.True(t, c.Describe().HighRiskFallback)
}

func TestHighRiskClass_Explicit(t *testing.T) {
	m := &stubModel{classes: categoricalClasses("GDM", "Normal", "PE"), dist: [][]float64{{0.1, 0.3, 0.6}}}
	cfg := thresholdConfig(0.5)
	cfg.HighRiskClass = valueobject.CategoricalLabel("PE")
	c := newClassifier(t, m, cfg)

	assert.Equal(t, 2, c.Describe().HighRiskSlot)
	assert.False(t, c.Describe().HighRiskFallback)

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)
	assert.Equal(t, 0.6, verdict.Prediction())
	assert.True(t, verdict.HighRiskClass().Equal(valueobject.CategoricalLabel("PE")))
}

// --- No-risk label ---

func TestNoRiskLabel_Explicit(t *testing.T) {
	m := &stubModel{classes: categoricalClasses("Healthy", "GDM"), labels: categoricalClasses("Healthy")}
	cfg := directConfig()
	cfg.NoRiskLabel = valueobject.CategoricalLabel("Healthy")
	c := newClassifier(t, m, cfg)

	verdict, err := c.Classify(sampleVector())
	require.NoError(t, err)
	assert.False(t, verdict.Result().IsHigh())
}

func TestNoRiskLabel_Defaults(t *testing.T) {
	numeric := newClassifier(t, &stubModel{classes: numericClasses(0, 1)}, directConfig())
	assert.True(t, numeric.Describe().NoRiskLabel.Equal(valueobject.NumericLabel(0)))

	categorical := newClassifier(t, &stubModel{classes: categoricalClasses("GDM", "Normal")}, directConfig())
	assert.True(t, categorical.Describe().NoRiskLabel.Equal(valueobject.CategoricalLabel("Normal")))
}

// --- Inference failures ---

func TestClassify_InferenceFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
		cfg   service.ClassifierConfig
		cause string
	}{
		{
			name:  "model error",
			model: &stubModel{classes: numericClasses(0, 1), err: errors.New("matrix is singular")},
			cfg:   directConfig(),
			cause: "matrix is singular",
		},
		{
			name:  "model panic",
			model: &stubModel{classes: numericClasses(0, 1), panicMsg: "index out of range"},
			cfg:   thresholdConfig(0.5),
			cause: "model panicked: index out of range",
		},
		{
			name:  "no labels",
			model: &stubModel{classes: numericClasses(0, 1), labels: nil},
			cfg:   directConfig(),
			cause: "returned 0 labels",
		},
		{
			name:  "too many labels",
			model: &stubModel{classes: numericClasses(0, 1), labels: numericClasses(0, 1)},
			cfg:   directConfig(),
			cause: "returned 2 labels",
		},
		{
			name:  "wrong distribution width",
			model: &stubModel{classes: numericClasses(0, 1), dist: [][]float64{{1}}},
			cfg:   thresholdConfig(0.5),
			cause: "1 probabilities for 2 classes",
		},
		{
			name:  "no distributions",
			model: &stubModel{classes: numericClasses(0, 1), dist: nil},
			cfg:   thresholdConfig(0.5),
			cause: "returned 0 distributions",
		},
		{
			name:  "probability out of range",
			model: &stubModel{classes: numericClasses(0, 1), dist: [][]float64{{-0.5, 1.5}}},
			cfg:   thresholdConfig(0.5),
			cause: "probability must be within [0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t, tt.model, tt.cfg)

			verdict, err := c.Classify(sampleVector())
			require.Error(t, err)
			assert.Nil(t, verdict)

			var ce *model.ClassificationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, model.ErrorKindInferenceFailure, ce.Kind)
			assert.Contains(t, ce.Cause, tt.cause)
		})
	}
}

// --- Startup ---

func TestNewRiskClassifier_StartupFailures(t *testing.T) {
	binary := numericClasses(0, 1)

	tests := []struct {
		name   string
		schema model.Schema
		model  port.Model
		cfg    service.ClassifierConfig
	}{
		{name: "no schema", schema: model.Schema{}, model: &stubModel{classes: binary}, cfg: directConfig()},
		{name: "no model", schema: model.DefaultSchema(), model: nil, cfg: directConfig()},
		{name: "no mode", schema: model.DefaultSchema(), model: &stubModel{classes: binary}, cfg: service.ClassifierConfig{}},
		{name: "no classes", schema: model.DefaultSchema(), model: &stubModel{}, cfg: directConfig()},
		{name: "threshold above one", schema: model.DefaultSchema(), model: &stubModel{classes: binary}, cfg: thresholdConfig(1.01)},
		{name: "negative threshold", schema: model.DefaultSchema(), model: &stubModel{classes: binary}, cfg: thresholdConfig(-0.1)},
		{
			name:   "unknown explicit high-risk class",
			schema: model.DefaultSchema(),
			model:  &stubModel{classes: binary},
			cfg: service.ClassifierConfig{
				Mode:          valueobject.DecisionModeProbabilityThreshold,
				Threshold:     0.5,
				HighRiskClass: valueobject.CategoricalLabel("1"),
			},
		},
		{name: "model narrower than schema", schema: model.DefaultSchema(), model: &stubModel{classes: binary, width: 20}, cfg: directConfig()},
		{name: "model wider than schema", schema: model.DefaultSchema(), model: &stubModel{classes: binary, width: 22}, cfg: thresholdConfig(0.5)},
		{
			name:   "feature names differ from schema",
			schema: model.DefaultSchema(),
			model: describedModel{
				stubModel: &stubModel{classes: binary},
				metadata:  port.ModelMetadata{FeatureNames: []string{"Age", "BMI"}},
			},
			cfg: directConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := service.NewRiskClassifier(tt.schema, tt.model, tt.cfg, discardLogger())
			require.Error(t, err)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, model.ErrStartupFailure)
		})
	}
}

func TestDescribe(t *testing.T) {
	m := describedModel{
		stubModel: &stubModel{classes: numericClasses(0, 1)},
		metadata: port.ModelMetadata{
			Kind:         "linear",
			Name:         "gdm-logreg",
			Version:      "2024-11",
			FeatureNames: model.DefaultSchema().Names(),
		},
	}
	c := newClassifier(t, m, thresholdConfig(0.35))

	desc := c.Describe()
	assert.Equal(t, "linear", desc.Kind)
	assert.Equal(t, "gdm-logreg", desc.Name)
	assert.Equal(t, "2024-11", desc.Version)
	assert.True(t, desc.Mode.Equal(valueobject.DecisionModeProbabilityThreshold))
	require.NotNil(t, desc.Threshold)
	assert.Equal(t, 0.35, *desc.Threshold)
	assert.Len(t, desc.Classes, 2)
	assert.Len(t, desc.FeatureNames, 21)

	direct := newClassifier(t, &stubModel{classes: numericClasses(0, 1)}, directConfig())
	assert.Nil(t, direct.Describe().Threshold)
	assert.True(t, direct.Describe().HighRiskClass.IsZero())
}
