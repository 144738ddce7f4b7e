// handlers_batch.go - File batch handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
	"github.com/ml-punto-tech/sentiment-api/internal/upload"
)

// BatchHandlerImpl implements the BatchHandler interface
type BatchHandlerImpl struct {
	batch BatchProcessor
	jobs  JobQueue
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(b BatchProcessor, jobs JobQueue) BatchHandler {
	return &BatchHandlerImpl{batch: b, jobs: jobs}
}

// openUpload reads the multipart "file" field. The caller closes the result.
func openUpload(c echo.Context) (*models.UploadedFile, func(), error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, &upload.EmptyFileError{}
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		// Body limit tripped while the form was being read.
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, NewBadRequestError("no file provided", err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, nil, NewInternalError("failed to open uploaded file", err)
	}

	file := &models.UploadedFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     src,
	}
	return file, func() { _ = src.Close() }, nil
}

// HandleBatch processes an uploaded file and returns the full result
func (h *BatchHandlerImpl) HandleBatch(c echo.Context) error {
	file, closeFile, err := openUpload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := h.batch.ProcessFile(c.Request().Context(), file)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "batch processed", newBatchResponse(result))
}

// HandleStartJob validates an uploaded file and processes it in the background
func (h *BatchHandlerImpl) HandleStartJob(c echo.Context) error {
	file, closeFile, err := openUpload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	texts, err := h.batch.Prepare(file)
	if err != nil {
		return err
	}

	job := h.jobs.Start(file.Name, texts)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
		"total":  job.Total,
	})
}

// HandleGetJob returns the state of a background batch
func (h *BatchHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId is required")
	}

	job, ok := h.jobs.Get(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	return respond(c, http.StatusOK, "job status", newJobResponse(job))
}
