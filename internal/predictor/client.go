package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Options configures the model client.
type Options struct {
	BaseURL     string
	PredictPath string
	HealthPath  string
	Timeout     time.Duration
	// MaxRetries is the number of extra attempts after a network error or 5xx.
	MaxRetries   int
	RetryBackoff time.Duration
	// RequestsPerSecond of 0 disables client-side rate limiting.
	RequestsPerSecond float64
	Burst             int
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Prevision    *string  `json:"prevision"`
	Probabilidad *float64 `json:"probabilidad"`
}

// HealthStatus is the model's answer to a health probe.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Client calls the model over HTTP.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a model client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 200 * time.Millisecond
	}
	if opts.PredictPath == "" {
		opts.PredictPath = "/api_sentimiento"
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		logger:     logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// Predict sends one text to the model.
// Every error returned wraps ErrUnavailable.
func (c *Client) Predict(ctx context.Context, text string) (models.Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return models.Prediction{}, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying prediction", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return models.Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.opts.RetryBackoff):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return models.Prediction{}, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
			}
		}

		pred, retryable, err := c.predictOnce(ctx, body)
		if err == nil {
			return pred, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	c.logger.Warn("prediction failed", "error", lastErr)
	return models.Prediction{}, lastErr
}

func (c *Client) predictOnce(ctx context.Context, body []byte) (models.Prediction, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+c.opts.PredictPath, bytes.NewReader(body))
	if err != nil {
		return models.Prediction{}, false, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Prediction{}, true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: model returned status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
		return models.Prediction{}, resp.StatusCode >= 500, err
	}

	var wire predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return models.Prediction{}, false, fmt.Errorf("%w: %w: decode: %v", ErrUnavailable, ErrMalformedResponse, err)
	}
	if wire.Prevision == nil || wire.Probabilidad == nil {
		return models.Prediction{}, false, fmt.Errorf("%w: %w: missing fields", ErrUnavailable, ErrMalformedResponse)
	}

	pred := models.Prediction{Label: strings.TrimSpace(*wire.Prevision), Probability: *wire.Probabilidad}
	if err := CheckPrediction(pred); err != nil {
		return models.Prediction{}, false, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrMalformedResponse, err)
	}
	return pred, false, nil
}

// Health probes the model's health endpoint.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+c.opts.HealthPath, nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HealthStatus{}, fmt.Errorf("%w: health returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("%w: %w: decode health: %v", ErrUnavailable, ErrMalformedResponse, err)
	}
	return status, nil
}
