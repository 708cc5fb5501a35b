package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"reelfake-backend/dtos"
	"reelfake-backend/ingest"
	"reelfake-backend/logger"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	uploadTrackPath     = "/api/admin/movies/upload/track"
	validationTrackPath = "/api/admin/movies/upload/track_validation"
)

// MovieUploadHandler serves the bulk catalog CSV endpoints.
type MovieUploadHandler struct {
	DB        *gorm.DB
	Registry  *utils.UploadRegistry
	UploadDir string
	MaxBytes  int64
}

// Upload imports a catalog CSV. With enable_tracking the file is only saved
// and the client drives the import through the track endpoint.
func (h *MovieUploadHandler) Upload(c *gin.Context) {
	enableTracking, ok := boolQuery(c, "enable_tracking")
	if !ok {
		return
	}
	stopOnError, ok := boolQuery(c, "stop_on_error")
	if !ok {
		return
	}

	path, name, ok := h.saveUpload(c)
	if !ok {
		return
	}

	if enableTracking {
		upload := h.Registry.Register(dtos.TrackedUpload{
			Mode:        dtos.UploadModeImport,
			Path:        path,
			FileName:    name,
			StopOnError: stopOnError,
			UploadedBy:  currentUserID(c),
		})
		c.JSON(http.StatusAccepted, dtos.TrackingResponse{
			TrackingURL: trackingURL(uploadTrackPath, upload.ID, nil),
			UploadID:    upload.ID,
		})
		return
	}

	summary, err := h.runImport(c.Request.Context(), path, nil, stopOnError)
	var failFast *ingest.FailFastError
	switch {
	case errors.As(err, &failFast):
		c.JSON(http.StatusBadRequest, gin.H{"errors": failFast.Errors})
	case errors.Is(err, ingest.ErrAborted):
		c.Abort()
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, summary)
	}
}

// TrackUpload runs a tracked import and streams one event per row. A
// stop_on_error import reports only its terminal event, once the transaction
// has committed or rolled back.
func (h *MovieUploadHandler) TrackUpload(c *gin.Context) {
	upload, ok := h.claim(c, dtos.UploadModeImport)
	if !ok {
		return
	}

	stream := newEventStream(c)
	summary, err := h.runImport(c.Request.Context(), upload.Path, stream, upload.StopOnError)
	stream.finish(dtos.ImportDoneEvent{Status: dtos.StreamStatusDone, RunSummary: summary}, err)
}

// ValidateUpload checks a catalog CSV without persisting anything.
func (h *MovieUploadHandler) ValidateUpload(c *gin.Context) {
	delayMs, ok := delayQuery(c)
	if !ok {
		return
	}
	enableTracking, ok := boolQuery(c, "enable_tracking")
	if !ok {
		return
	}

	path, name, ok := h.saveUpload(c)
	if !ok {
		return
	}

	if enableTracking {
		upload := h.Registry.Register(dtos.TrackedUpload{
			Mode:         dtos.UploadModeValidate,
			Path:         path,
			FileName:     name,
			DelayEventMs: delayMs,
			UploadedBy:   currentUserID(c),
		})
		c.JSON(http.StatusAccepted, dtos.TrackingResponse{
			TrackingURL: trackingURL(validationTrackPath, upload.ID, url.Values{
				"delay_event_ms": {strconv.Itoa(delayMs)},
			}),
			UploadID: upload.ID,
		})
		return
	}

	run := ingest.NewRun(path, ingest.NewGormStore(h.DB), logger.L())
	summary, err := run.Validate(c.Request.Context(), nil, time.Duration(delayMs)*time.Millisecond)
	if errors.Is(err, ingest.ErrAborted) {
		c.Abort()
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dtos.ValidationResponse{
		TotalRows:   summary.ProcessedRowsCount,
		InvalidRows: summary.InvalidRows,
	})
}

// TrackValidation streams per-row validation verdicts. A delay_event_ms on
// the track request overrides the one given at upload time.
func (h *MovieUploadHandler) TrackValidation(c *gin.Context) {
	delayMs, ok := delayQuery(c)
	if !ok {
		return
	}
	upload, ok := h.claim(c, dtos.UploadModeValidate)
	if !ok {
		return
	}
	if c.Query("delay_event_ms") == "" {
		delayMs = upload.DelayEventMs
	}

	stream := newEventStream(c)
	run := ingest.NewRun(upload.Path, ingest.NewGormStore(h.DB), logger.L())
	summary, err := run.Validate(c.Request.Context(), stream, time.Duration(delayMs)*time.Millisecond)
	stream.finish(dtos.ValidationDoneEvent{Status: dtos.StreamStatusDone, ValidationSummary: summary}, err)
}

// runImport imports the file at path. With stopOnError the whole run shares
// one transaction, so a FailFastError leaves nothing behind.
func (h *MovieUploadHandler) runImport(ctx context.Context, path string, sink ingest.Sink, stopOnError bool) (ingest.RunSummary, error) {
	if !stopOnError {
		run := ingest.NewRun(path, ingest.NewGormStore(h.DB), logger.L())
		return run.Import(ctx, sink, ingest.ImportOptions{})
	}

	var summary ingest.RunSummary
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := ingest.NewRun(path, ingest.NewGormStore(tx), logger.L())
		var err error
		summary, err = run.Import(ctx, sink, ingest.ImportOptions{StopOnError: true})
		return err
	})
	if err != nil {
		// Begin can fail before the run owns the file.
		discardUpload(path)
	}
	return summary, err
}

func discardUpload(path string) {
	if err := ingest.RemoveFile(path); err != nil {
		logger.L().Warn("removing upload failed", zap.String("path", path), zap.Error(err))
	}
}

// saveUpload stores the multipart "file" field under UploadDir.
func (h *MovieUploadHandler) saveUpload(c *gin.Context) (path, name string, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return "", "", false
	}
	if err := utils.ValidateCSVUpload(fileHeader, h.MaxBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", "", false
	}

	if err := os.MkdirAll(h.UploadDir, 0o750); err != nil {
		logger.L().Error("creating upload dir failed", zap.String("dir", h.UploadDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return "", "", false
	}
	path = filepath.Join(h.UploadDir, uuid.NewString()+".csv")
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		logger.L().Error("saving upload failed", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return "", "", false
	}
	return path, fileHeader.Filename, true
}

func (h *MovieUploadHandler) claim(c *gin.Context, mode dtos.UploadMode) (*dtos.TrackedUpload, bool) {
	id, err := uuid.Parse(c.Query("upload_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload ID"})
		return nil, false
	}
	upload, ok := h.Registry.Claim(id, mode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found or already tracked"})
		return nil, false
	}
	return upload, true
}

func trackingURL(path string, id uuid.UUID, extra url.Values) string {
	q := url.Values{"upload_id": {id.String()}}
	for k, v := range extra {
		q[k] = v
	}
	return path + "?" + q.Encode()
}

func boolQuery(c *gin.Context, key string) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be true or false", key)})
		return false, false
	}
	return v, true
}

// delayQuery reads delay_event_ms, which must be a whole number of
// milliseconds no larger than ingest.MaxEventDelay.
func delayQuery(c *gin.Context) (int, bool) {
	raw := c.Query("delay_event_ms")
	if raw == "" {
		return 0, true
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 || time.Duration(ms)*time.Millisecond > ingest.MaxEventDelay {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("delay_event_ms must be an integer between 0 and %d", ingest.MaxEventDelay.Milliseconds()),
		})
		return 0, false
	}
	return ms, true
}

func currentUserID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// eventStream writes server-sent events, one JSON object per event. It is
// both an ingest.Sink and an ingest.ValidationSink.
type eventStream struct {
	c *gin.Context
}

func newEventStream(c *gin.Context) *eventStream {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()
	return &eventStream{c: c}
}

func (s *eventStream) send(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.c.Writer.Flush()
	return nil
}

func (s *eventStream) OnSuccess(row ingest.RowSuccess) error { return s.send(row) }
func (s *eventStream) OnFailure(row ingest.RowFailure) error { return s.send(row) }
func (s *eventStream) OnRow(verdict ingest.RowVerdict) error { return s.send(verdict) }

// finish writes the terminal event. Nothing is written once the client is gone.
func (s *eventStream) finish(done any, err error) {
	if errors.Is(err, ingest.ErrAborted) {
		logger.L().Info("upload stream closed by client")
		return
	}
	if err != nil {
		err = s.send(streamErrorEvent(err))
	} else {
		err = s.send(done)
	}
	if err != nil {
		logger.L().Warn("writing terminal event failed", zap.Error(err))
	}
}

func streamErrorEvent(err error) dtos.StreamErrorEvent {
	event := dtos.StreamErrorEvent{
		Status:  dtos.StreamStatusError,
		Message: err.Error(),
		Errors:  []*ingest.UploadError{},
	}
	var failFast *ingest.FailFastError
	if errors.As(err, &failFast) {
		event.Message = fmt.Sprintf("Import stopped at row %d and was rolled back", failFast.RowNumber)
		event.Errors = failFast.Errors
	}
	return event
}
