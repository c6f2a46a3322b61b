package domain

import "errors"

// ErrInvalidBounds marks a malformed or inverted bounding box.
// Caller-correctable; the HTTP layer maps it to a client error.
var ErrInvalidBounds = errors.New("invalid geographic bounds")

// ErrRepositoryUnavailable marks a failed storage read. The pipeline does
// not retry; retry policy belongs to the caller.
var ErrRepositoryUnavailable = errors.New("outbreak storage unavailable")

// ErrReportNotFound marks a lookup for a report ID that does not exist.
// Kept distinct from ErrRepositoryUnavailable so a storage outage is
// never presented as a missing report.
var ErrReportNotFound = errors.New("report not found")

// PredictionEngineError wraps any failure of the external prediction
// engine: unreachable, timed out, non-success status, or an unparseable
// payload. Kept distinct from storage failures so operators can tell
// which dependency is unhealthy.
type PredictionEngineError struct {
	Cause error
}

func (e *PredictionEngineError) Error() string {
	if e.Cause == nil {
		return "prediction engine failed"
	}
	return "prediction engine failed: " + e.Cause.Error()
}

func (e *PredictionEngineError) Unwrap() error { return e.Cause }
