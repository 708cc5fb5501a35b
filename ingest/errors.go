package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags an UploadError.
type ErrorKind string

const (
	KindDuplicateTmdbID    ErrorKind = "DuplicateTmdbId"
	KindDuplicateImdbID    ErrorKind = "DuplicateImdbId"
	KindValidationFailed   ErrorKind = "ValidationFailed"
	KindUniqueKeyViolation ErrorKind = "UniqueKeyViolation"
	KindDatabaseError      ErrorKind = "DatabaseError"
	KindUnhandledException ErrorKind = "UnhandledException"
)

const rowNumberNotRowScoped = -1

// FieldRef names the CSV column and raw value an error refers to.
type FieldRef struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UploadError is a row-scoped (or, with RowNumber -1, run-scoped) failure.
type UploadError struct {
	Kind      ErrorKind `json:"kind"`
	RowNumber int       `json:"rowNumber"`
	Message   string    `json:"message"`
	Field     *FieldRef `json:"field,omitempty"`
}

func (e *UploadError) Error() string {
	if e.RowNumber == rowNumberNotRowScoped {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.RowNumber, e.Kind, e.Message)
}

func newUploadError(kind ErrorKind, row int, message string) *UploadError {
	return &UploadError{Kind: kind, RowNumber: row, Message: message}
}

func (e *UploadError) withField(key, value string) *UploadError {
	e.Field = &FieldRef{Key: key, Value: value}
	return e
}

// UploadErrors lets a CatalogStore report several row-scoped failures at once.
type UploadErrors []*UploadError

func (es UploadErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// asUploadErrors extracts row-scoped failures from err. ok is false when err
// is not one of the continuable kinds, in which case the run must stop.
func asUploadErrors(err error) (UploadErrors, bool) {
	var many UploadErrors
	if errors.As(err, &many) {
		return many, true
	}
	var one *UploadError
	if errors.As(err, &one) {
		return UploadErrors{one}, true
	}
	return nil, false
}

func reasons(errs []*UploadError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// StreamError is a run-fatal failure of the CSV source: unreadable file,
// malformed CSV or a missing header.
type StreamError struct {
	Line int
	Err  error
}

func (e *StreamError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("csv stream failed at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("csv stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// FailFastError ends a StopOnError import at the first failing row.
type FailFastError struct {
	RowNumber int
	Errors    []*UploadError
}

func (e *FailFastError) Error() string {
	return fmt.Sprintf("import stopped at row %d: %s", e.RowNumber, strings.Join(reasons(e.Errors), "; "))
}

// ErrAborted is returned by a run whose source was aborted before it drained.
var ErrAborted = errors.New("ingestion aborted")
