// Package stream classifies feature vectors delivered over Kafka.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pregcare/riskd/internal/application/dto"
	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
	pkgkafka "github.com/pregcare/riskd/pkg/kafka"
)

const requestIDHeader = "request_id"

// classifyMessage is the payload of a classification request.
type classifyMessage struct {
	RequestID string      `json:"request_id"`
	Features  *[]*float64 `json:"features"`
}

// RequestHandler turns request-topic messages into verdicts. Verdicts reach
// downstream consumers through the event publisher.
type RequestHandler struct {
	classify *usecase.ClassifyFeatures
	logger   *slog.Logger
}

// NewRequestHandler creates a new stream request handler.
func NewRequestHandler(classify *usecase.ClassifyFeatures, logger *slog.Logger) *RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestHandler{classify: classify, logger: logger}
}

// Handle implements pkgkafka.Handler. Malformed or rejected requests are
// logged and dropped so the consumer moves past them.
func (h *RequestHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req classifyMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.logger.WarnContext(ctx, "dropping malformed classification request",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if req.Features == nil {
		h.logger.WarnContext(ctx, "dropping classification request without features",
			"key", string(msg.Key),
		)
		return nil
	}
	if req.RequestID == "" {
		req.RequestID = msg.Headers[requestIDHeader]
	}
	if req.RequestID == "" {
		req.RequestID = string(msg.Key)
	}

	resp, err := h.classify.Execute(ctx, dto.ClassifyRequest{
		RequestID: req.RequestID,
		Features:  *req.Features,
	})
	if err != nil {
		if model.IsClientError(err) {
			h.logger.WarnContext(ctx, "classification request rejected",
				"request_id", req.RequestID,
				"error", err,
			)
			return nil
		}
		return err
	}

	h.logger.InfoContext(ctx, "classification request served",
		"request_id", req.RequestID,
		"verdict_id", resp.ID.String(),
		"result", resp.Result,
	)
	return nil
}

// Handler adapts h to the consumer callback.
func (h *RequestHandler) Handler() pkgkafka.Handler {
	return h.Handle
}
