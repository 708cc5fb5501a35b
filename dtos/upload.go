package dtos

import (
	"time"

	"reelfake-backend/ingest"

	"github.com/google/uuid"
)

// UploadMode says which track endpoint may claim a tracked upload
type UploadMode string

const (
	UploadModeImport   UploadMode = "import"
	UploadModeValidate UploadMode = "validate"
)

// TrackedUpload is a catalog file saved to disk and waiting for its track request
type TrackedUpload struct {
	ID           uuid.UUID  `json:"id"`
	Mode         UploadMode `json:"mode"`
	Path         string     `json:"-"`
	FileName     string     `json:"file_name"`
	StopOnError  bool       `json:"stop_on_error"`
	DelayEventMs int        `json:"delay_event_ms"`
	UploadedBy   uuid.UUID  `json:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TrackingResponse struct {
	TrackingURL string    `json:"trackingUrl"`
	UploadID    uuid.UUID `json:"uploadId"`
}

// ValidationResponse is the synchronous validate-only answer
type ValidationResponse struct {
	TotalRows   int                 `json:"totalRows"`
	InvalidRows []ingest.RowVerdict `json:"invalidRows"`
}

// Stream terminal statuses
const (
	StreamStatusDone  = "done"
	StreamStatusError = "error"
)

// ImportDoneEvent closes an import stream
type ImportDoneEvent struct {
	Status string `json:"status"`
	ingest.RunSummary
}

// ValidationDoneEvent closes a validation stream
type ValidationDoneEvent struct {
	Status string `json:"status"`
	ingest.ValidationSummary
}

// StreamErrorEvent closes a stream that failed
type StreamErrorEvent struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Errors  []*ingest.UploadError `json:"errors"`
}
