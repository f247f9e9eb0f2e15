package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pregcare/riskd/internal/application/dto"
	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
)

const verdictIDHeader = "X-Verdict-ID"

// PredictHandler serves classification requests.
type PredictHandler struct {
	classify *usecase.ClassifyFeatures
	describe *usecase.DescribeModel
	logger   *slog.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(classify *usecase.ClassifyFeatures, describe *usecase.DescribeModel, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{
		classify: classify,
		describe: describe,
		logger:   logger,
	}
}

// PredictRequest is the body of POST /predict. A nil Features means the field
// was absent or null; a nil entry is a null feature.
type PredictRequest struct {
	Features *[]*float64 `json:"features"`
}

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	Prediction any    `json:"prediction"`
	Result     string `json:"result"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Expected int    `json:"expected,omitempty"`
	Actual   *int   `json:"actual,omitempty"`
}

// Root answers the legacy liveness banner.
func (h *PredictHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Backend running successfully",
		"model":   "Loaded",
	})
}

// Predict classifies one feature vector.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	if req.Features == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Features are required"})
		return
	}

	resp, err := h.classify.Execute(c.Request.Context(), dto.ClassifyRequest{
		RequestID: c.GetHeader("X-Request-ID"),
		Features:  *req.Features,
	})
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("prediction failed", "error", err)
		}
		c.JSON(status, body)
		return
	}

	c.Header(verdictIDHeader, resp.ID.String())
	c.JSON(http.StatusOK, PredictResponse{
		Prediction: resp.Prediction,
		Result:     resp.Result,
	})
}

// Model describes the loaded model.
func (h *PredictHandler) Model(c *gin.Context) {
	c.JSON(http.StatusOK, h.describe.Execute())
}

func errorResponse(err error) (int, ErrorResponse) {
	var ce *model.ClassificationError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, ErrorResponse{Error: "Prediction failed"}
	}

	switch ce.Kind {
	case model.ErrorKindSchemaMismatch:
		actual := ce.Actual
		return http.StatusBadRequest, ErrorResponse{
			Error:    "Schema mismatch",
			Details:  ce.Cause,
			Expected: ce.Expected,
			Actual:   &actual,
		}
	case model.ErrorKindInferenceFailure:
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Inference failed",
			Details: ce.Cause,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Prediction failed"}
	}
}
