package usecase

import (
	"github.com/pregcare/riskd/internal/application/dto"
	"github.com/pregcare/riskd/internal/domain/service"
)

// DescribeModel is the use case for inspecting the loaded model.
type DescribeModel struct {
	classifier *service.RiskClassifier
}

// NewDescribeModel creates a new DescribeModel use case.
func NewDescribeModel(classifier *service.RiskClassifier) *DescribeModel {
	return &DescribeModel{classifier: classifier}
}

// Execute returns the model description.
func (uc *DescribeModel) Execute() dto.ModelInfoResponse {
	return dto.FromDescription(uc.classifier.Describe())
}
