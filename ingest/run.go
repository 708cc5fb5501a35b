package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MaxEventDelay bounds the artificial per-row delay of a validation run.
const MaxEventDelay = 1000 * time.Millisecond

var (
	// ErrRunReused is returned when Import or Validate is called on a run
	// that already started.
	ErrRunReused = errors.New("ingestion run already started")

	// ErrDelayOutOfRange rejects a validation delay outside [0, MaxEventDelay].
	ErrDelayOutOfRange = fmt.Errorf("event delay must be between 0 and %d ms", MaxEventDelay.Milliseconds())
)

type ImportOptions struct {
	// StopOnError ends the import at the first failing row with a
	// *FailFastError. Callers run the import in a transaction and roll it
	// back on that error. Successful rows are not sent to the sink, since
	// their ids only exist once the caller commits; the returned summary
	// carries them.
	StopOnError bool
}

type RowSuccess struct {
	RowNumber int  `json:"rowNumber"`
	ID        uint `json:"id"`
}

type RowFailure struct {
	RowNumber int            `json:"rowNumber"`
	Reasons   []string       `json:"reasons"`
	Errors    []*UploadError `json:"-"`
}

type RunSummary struct {
	TotalRows   int          `json:"totalRows"`
	SuccessRows []RowSuccess `json:"successRows"`
	FailedRows  []RowFailure `json:"failedRows"`
}

// Sink receives row outcomes as they happen, in row order. An error from a
// sink ends the run.
type Sink interface {
	OnSuccess(RowSuccess) error
	OnFailure(RowFailure) error
}

type RowVerdict struct {
	RowNumber int      `json:"rowNumber"`
	IsValid   bool     `json:"isValid"`
	Reasons   []string `json:"reasons"`
}

type ValidationSummary struct {
	ProcessedRowsCount int          `json:"processedRowsCount"`
	ValidRowsCount     int          `json:"validRowsCount"`
	InvalidRowsCount   int          `json:"invalidRowsCount"`
	InvalidRows        []RowVerdict `json:"invalidRows"`
}

type ValidationSink interface {
	OnRow(RowVerdict) error
}

// Run is one ingestion of one uploaded file. It owns the file, its source
// and its counters, and removes the file when it ends however it ends.
type Run struct {
	path      string
	source    *Source
	store     CatalogStore
	validator *Validator
	log       *zap.Logger
	started   atomic.Bool
}

func NewRun(path string, store CatalogStore, log *zap.Logger) *Run {
	if log == nil {
		log = zap.NewNop()
	}
	return &Run{
		path:      path,
		source:    NewSource(path),
		store:     store,
		validator: NewValidator(store),
		log:       log.With(zap.String("upload", path)),
	}
}

// Abort stops the run at its next row. Safe to call at any time.
func (r *Run) Abort() {
	r.source.Abort()
}

// rowResult is the outcome of one row: an id on success, errors otherwise.
type rowResult struct {
	rowNumber int
	id        uint
	errs      []*UploadError
}

func (res rowResult) ok() bool { return len(res.errs) == 0 }

// Import validates and persists every row. The returned summary covers the
// rows handled before any error.
func (r *Run) Import(ctx context.Context, sink Sink, opts ImportOptions) (RunSummary, error) {
	summary := RunSummary{SuccessRows: []RowSuccess{}, FailedRows: []RowFailure{}}
	if !r.started.CompareAndSwap(false, true) {
		return summary, ErrRunReused
	}
	defer r.cleanup()
	stop := context.AfterFunc(ctx, r.Abort)
	defer stop()

	start := time.Now()
	r.log.Info("catalog import started", zap.Bool("stop_on_error", opts.StopOnError))

	for {
		raw, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, r.fail(ctx, err)
		}

		res, err := r.importRow(ctx, raw)
		if err != nil {
			return summary, r.fail(ctx, err)
		}
		summary.TotalRows++

		if !res.ok() {
			failure := RowFailure{RowNumber: res.rowNumber, Reasons: reasons(res.errs), Errors: res.errs}
			summary.FailedRows = append(summary.FailedRows, failure)
			r.log.Debug("row rejected", zap.Int("row", res.rowNumber), zap.Strings("reasons", failure.Reasons))
			if opts.StopOnError {
				return summary, &FailFastError{RowNumber: res.rowNumber, Errors: res.errs}
			}
			if sink != nil {
				if err := sink.OnFailure(failure); err != nil {
					return summary, r.fail(ctx, fmt.Errorf("reporting row %d: %w", res.rowNumber, err))
				}
			}
			continue
		}

		success := RowSuccess{RowNumber: res.rowNumber, ID: res.id}
		summary.SuccessRows = append(summary.SuccessRows, success)
		if sink != nil && !opts.StopOnError {
			if err := sink.OnSuccess(success); err != nil {
				return summary, r.fail(ctx, fmt.Errorf("reporting row %d: %w", res.rowNumber, err))
			}
		}
	}

	if r.source.Aborted() {
		r.log.Info("catalog import aborted", zap.Int("total_rows", summary.TotalRows))
		return summary, ErrAborted
	}

	r.log.Info("catalog import finished",
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("success_rows", len(summary.SuccessRows)),
		zap.Int("failed_rows", len(summary.FailedRows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

func (r *Run) importRow(ctx context.Context, raw RawRow) (rowResult, error) {
	parsed, errs := r.validator.Check(ctx, raw)
	if len(errs) > 0 {
		return rowResult{rowNumber: raw.Index, errs: errs}, nil
	}

	created, err := r.store.CreateMovie(ctx, &parsed)
	if err != nil {
		if rowErrs, ok := asUploadErrors(err); ok {
			return rowResult{rowNumber: raw.Index, errs: rowErrs}, nil
		}
		return rowResult{}, fmt.Errorf("row %d: %w", raw.Index, err)
	}

	if created.TmdbID != *parsed.TmdbID {
		return rowResult{rowNumber: raw.Index, errs: []*UploadError{
			newUploadError(KindDatabaseError, raw.Index,
				fmt.Sprintf("Persisted movie %d has tmdb_id %d, expected %d", created.ID, created.TmdbID, *parsed.TmdbID)),
		}}, nil
	}
	return rowResult{rowNumber: raw.Index, id: created.ID}, nil
}

// Validate checks every row without persisting anything, waiting delay
// before each verdict.
func (r *Run) Validate(ctx context.Context, sink ValidationSink, delay time.Duration) (ValidationSummary, error) {
	summary := ValidationSummary{InvalidRows: []RowVerdict{}}
	if !r.started.CompareAndSwap(false, true) {
		return summary, ErrRunReused
	}
	defer r.cleanup()
	if delay < 0 || delay > MaxEventDelay {
		return summary, ErrDelayOutOfRange
	}
	stop := context.AfterFunc(ctx, r.Abort)
	defer stop()

	r.log.Info("catalog validation started", zap.Duration("delay", delay))

	for {
		raw, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, r.fail(ctx, err)
		}

		outcome := r.validator.Validate(ctx, raw.Index, raw)
		verdict := RowVerdict{RowNumber: raw.Index, IsValid: outcome.IsValid, Reasons: outcome.Reasons}
		summary.ProcessedRowsCount++
		if verdict.IsValid {
			summary.ValidRowsCount++
		} else {
			summary.InvalidRowsCount++
			summary.InvalidRows = append(summary.InvalidRows, verdict)
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				r.Abort()
				return summary, ErrAborted
			case <-time.After(delay):
			}
		}

		if sink != nil {
			if err := sink.OnRow(verdict); err != nil {
				return summary, r.fail(ctx, fmt.Errorf("reporting row %d: %w", verdict.RowNumber, err))
			}
		}
	}

	if r.source.Aborted() {
		return summary, ErrAborted
	}

	r.log.Info("catalog validation finished",
		zap.Int("processed_rows", summary.ProcessedRowsCount),
		zap.Int("valid_rows", summary.ValidRowsCount),
		zap.Int("invalid_rows", summary.InvalidRowsCount),
	)
	return summary, nil
}

// fail turns a run-ending error into what the caller sees. Anything that
// happens after the caller went away is reported as an abort.
func (r *Run) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil || r.source.Aborted() {
		r.Abort()
		return ErrAborted
	}
	r.log.Error("catalog ingestion failed", zap.Error(err))
	return err
}

func (r *Run) cleanup() {
	r.source.Abort()
	if err := RemoveFile(r.path); err != nil {
		r.log.Warn("removing upload failed", zap.Error(err))
	}
}
