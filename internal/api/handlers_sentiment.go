// handlers_sentiment.go - Single-text prediction handler
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ml-punto-tech/sentiment-api/internal/metrics"
	"github.com/ml-punto-tech/sentiment-api/internal/predictor"
)

// PredictRequest is the body of a single-text prediction.
type PredictRequest struct {
	Text string `json:"text" validate:"required"`
}

// SentimentHandlerImpl implements the SentimentHandler interface
type SentimentHandlerImpl struct {
	predictor     predictor.Predictor
	validator     *RequestValidator
	minTextLength int
}

// NewSentimentHandler creates a new sentiment handler
func NewSentimentHandler(p predictor.Predictor, v *RequestValidator, minTextLength int) SentimentHandler {
	return &SentimentHandlerImpl{
		predictor:     p,
		validator:     v,
		minTextLength: minTextLength,
	}
}

// HandlePredict classifies one text
func (h *SentimentHandlerImpl) HandlePredict(c echo.Context) error {
	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := h.validator.Validate(&req); err != nil {
		return err
	}
	if err := h.validator.ValidateVar("text", req.Text, fmt.Sprintf("min=%d", h.minTextLength)); err != nil {
		return err
	}

	start := time.Now()
	pred, err := h.predictor.Predict(c.Request().Context(), req.Text)
	metrics.RecordPrediction(metrics.PathSingle, err == nil, time.Since(start).Seconds())
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "sentiment analyzed", SentimentResponse{
		Label:       pred.Label,
		Probability: pred.Probability,
	})
}
