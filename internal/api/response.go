// response.go - Response envelope and content negotiation
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ml-punto-tech/sentiment-api/internal/batch"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// MIMEApplicationMsgpack is the MessagePack media type.
const MIMEApplicationMsgpack = "application/msgpack"

// Envelope wraps successful responses.
type Envelope struct {
	Success   bool      `json:"success" msgpack:"success"`
	Message   string    `json:"message" msgpack:"message"`
	Data      any       `json:"data" msgpack:"data"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// SentimentResponse is a single prediction.
type SentimentResponse struct {
	Label       string  `json:"label" msgpack:"label"`
	Probability float64 `json:"probability" msgpack:"probability"`
}

// BatchItemResponse is one line of a batch response.
type BatchItemResponse struct {
	Text      string            `json:"text" msgpack:"text"`
	Line      int               `json:"line" msgpack:"line"`
	Sentiment SentimentResponse `json:"sentiment" msgpack:"sentiment"`
	Error     string            `json:"error,omitempty" msgpack:"error,omitempty"`
}

// BatchResponse is the result of a processed batch.
type BatchResponse struct {
	BatchID        string              `json:"batchId" msgpack:"batchId"`
	TotalProcessed int                 `json:"totalProcessed" msgpack:"totalProcessed"`
	Successful     int                 `json:"successful" msgpack:"successful"`
	Failed         int                 `json:"failed" msgpack:"failed"`
	TotalPositives int                 `json:"totalPositives" msgpack:"totalPositives"`
	TotalNeutrals  int                 `json:"totalNeutrals" msgpack:"totalNeutrals"`
	TotalNegatives int                 `json:"totalNegatives" msgpack:"totalNegatives"`
	DurationMs     int64               `json:"durationMs" msgpack:"durationMs"`
	Results        []BatchItemResponse `json:"results" msgpack:"results"`
}

// JobResponse is the state of an asynchronous batch.
type JobResponse struct {
	JobID       string         `json:"jobId" msgpack:"jobId"`
	FileName    string         `json:"fileName" msgpack:"fileName"`
	Status      batch.Status   `json:"status" msgpack:"status"`
	Total       int            `json:"total" msgpack:"total"`
	Processed   int            `json:"processed" msgpack:"processed"`
	Progress    float64        `json:"progress" msgpack:"progress"`
	Error       string         `json:"error,omitempty" msgpack:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" msgpack:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" msgpack:"completedAt,omitempty"`
	Result      *BatchResponse `json:"result,omitempty" msgpack:"result,omitempty"`
}

func newBatchResponse(r *models.BatchResult) *BatchResponse {
	resp := &BatchResponse{
		BatchID:        r.ID,
		TotalProcessed: r.Summary.TotalProcessed,
		Successful:     r.Summary.Successful,
		Failed:         r.Summary.Failed,
		TotalPositives: r.Summary.Positives,
		TotalNeutrals:  r.Summary.Neutrals,
		TotalNegatives: r.Summary.Negatives,
		DurationMs:     r.Duration.Milliseconds(),
		Results:        make([]BatchItemResponse, len(r.Items)),
	}

	for i, item := range r.Items {
		out := BatchItemResponse{Text: item.Text.Text, Line: item.Text.Line}
		if item.Outcome.Succeeded() {
			out.Sentiment = SentimentResponse{Label: item.Outcome.Label, Probability: item.Outcome.Probability}
		} else {
			out.Sentiment = SentimentResponse{Label: models.ErrorLabel, Probability: 0.0}
			out.Error = item.Outcome.Reason
		}
		resp.Results[i] = out
	}
	return resp
}

func newJobResponse(job batch.Job) JobResponse {
	resp := JobResponse{
		JobID:       job.ID,
		FileName:    job.FileName,
		Status:      job.Status,
		Total:       job.Total,
		Processed:   job.Processed,
		Progress:    job.Progress,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Result != nil {
		resp.Result = newBatchResponse(job.Result)
	}
	return resp
}

// wantsMsgpack reports whether the client asked for MessagePack.
func wantsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack)
}

// render writes v as MessagePack or JSON depending on the Accept header.
func render(c echo.Context, status int, v any) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}

	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, MIMEApplicationMsgpack, data)
}

// respond writes data wrapped in the success envelope.
func respond(c echo.Context, status int, message string, data any) error {
	return render(c, status, Envelope{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
