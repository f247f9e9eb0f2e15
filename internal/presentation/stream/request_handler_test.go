package stream

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/internal/domain/valueobject"
	"github.com/pregcare/riskd/pkg/events"
	pkgkafka "github.com/pregcare/riskd/pkg/kafka"
)

// --- Mock implementations ---

type stubModel struct {
	label valueobject.ClassLabel
}

func (m stubModel) Classes() []valueobject.ClassLabel {
	return []valueobject.ClassLabel{valueobject.NumericLabel(0), valueobject.NumericLabel(1)}
}

func (m stubModel) Features() int { return model.DefaultSchema().Len() }

func (m stubModel) Predict([][]float64) ([]valueobject.ClassLabel, error) {
	return []valueobject.ClassLabel{m.label}, nil
}

func (m stubModel) PredictProba([][]float64) ([][]float64, error) {
	return nil, errors.New("not used")
}

type recordingPublisher struct {
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	p.events = append(p.events, evts...)
	return nil
}

// --- Helpers ---

func newTestHandler(t *testing.T, label valueobject.ClassLabel) (*RequestHandler, *recordingPublisher, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	classifier, err := service.NewRiskClassifier(model.DefaultSchema(), stubModel{label: label},
		service.ClassifierConfig{Mode: valueobject.DecisionModeDirectLabel}, logger)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return NewRequestHandler(usecase.NewClassifyFeatures(classifier, pub, nil, logger), logger), pub, &logs
}

func payload(n int) []byte {
	var b bytes.Buffer
	b.WriteString(`{"request_id":"req-9","features":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("0")
	}
	b.WriteString("]}")
	return b.Bytes()
}

// --- Tests ---

func TestRequestHandler_Handle_Classifies(t *testing.T) {
	h, pub, logs := newTestHandler(t, valueobject.NumericLabel(1))

	err := h.Handle(context.Background(), pkgkafka.Message{Value: payload(21)})
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "risk.verdict.classified", pub.events[0].EventType())
	assert.Equal(t, "risk.verdict.high_risk", pub.events[1].EventType())
	assert.Contains(t, logs.String(), "request_id=req-9")
	assert.Contains(t, logs.String(), `result="High Risk"`)
}

func TestRequestHandler_Handle_DropsBadMessages(t *testing.T) {
	tests := []struct {
		name    string
		value   []byte
		wantLog string
	}{
		{name: "invalid json", value: []byte("{not json"), wantLog: "malformed"},
		{name: "missing features", value: []byte(`{"request_id":"r"}`), wantLog: "without features"},
		{name: "wrong feature count", value: payload(20), wantLog: "rejected"},
		{name: "null feature", value: []byte(`{"features":[null,` + zeros(20) + `]}`), wantLog: "feature 0 (Age) is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, pub, logs := newTestHandler(t, valueobject.NumericLabel(0))

			err := h.Handle(context.Background(), pkgkafka.Message{Key: []byte("k"), Value: tt.value})
			require.NoError(t, err)
			assert.Empty(t, pub.events)
			assert.Contains(t, logs.String(), tt.wantLog)
		})
	}
}

func TestRequestHandler_Handle_RequestIDFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		msg     pkgkafka.Message
		wantLog string
	}{
		{
			name: "header",
			msg: pkgkafka.Message{
				Key:     []byte("key-1"),
				Value:   []byte(`{"features":[` + zeros(21) + `]}`),
				Headers: map[string]string{"request_id": "hdr-1"},
			},
			wantLog: "request_id=hdr-1",
		},
		{
			name: "message key",
			msg: pkgkafka.Message{
				Key:   []byte("key-2"),
				Value: []byte(`{"features":[` + zeros(21) + `]}`),
			},
			wantLog: "request_id=key-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, logs := newTestHandler(t, valueobject.NumericLabel(0))

			require.NoError(t, h.Handler()(context.Background(), tt.msg))
			assert.Contains(t, logs.String(), tt.wantLog)
		})
	}
}

func zeros(n int) string {
	p := payload(n)
	start := bytes.IndexByte(p, '[')
	return string(p[start+1 : len(p)-2])
}
