package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pregcare/riskd/internal/domain/valueobject"
)

func TestDecisionMode_FromString(t *testing.T) {
	tests := []struct {
		input    string
		expected valueobject.DecisionMode
		wantErr  bool
	}{
		{"direct_label", valueobject.DecisionModeDirectLabel, false},
		{"label", valueobject.DecisionModeDirectLabel, false},
		{"probability_threshold", valueobject.DecisionModeProbabilityThreshold, false},
		{"threshold", valueobject.DecisionModeProbabilityThreshold, false},
		{"proba", valueobject.DecisionMode{}, true},
		{"", valueobject.DecisionMode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := valueobject.DecisionModeFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, mode.IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(mode))
		})
	}
}

func TestDecisionMode_UsesThreshold(t *testing.T) {
	assert.True(t, valueobject.DecisionModeProbabilityThreshold.UsesThreshold())
	assert.False(t, valueobject.DecisionModeDirectLabel.UsesThreshold())
}

func TestDecisionMode_String(t *testing.T) {
	assert.Equal(t, "direct_label", valueobject.DecisionModeDirectLabel.String())
	assert.Equal(t, "probability_threshold", valueobject.DecisionModeProbabilityThreshold.String())
}
