package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and repositories. Handlers map
// these to stable API classifications; consumers log and drop.
var (
	ErrSensorNotFound  = errors.New("sensor not found")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrNoReadings      = errors.New("no readings for sensor")
	ErrNoActivePlan    = errors.New("no active plan")
	ErrTankGeometry    = errors.New("invalid tank geometry")
	ErrPlanConflict    = errors.New("concurrent plan generation conflict")
	ErrPlannerFailed   = errors.New("text generation service failed")
)

// ValidationError describes a malformed or incomplete ingestion payload.
// The offending message is dropped; processing continues.
type ValidationError struct {
	Missing []string // required keys absent from the payload
	Reason  string   // set for malformed payloads and coercion failures
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("validation failed: missing required fields: %s",
			strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a database failure with the device or owner it
// concerned. The operation is aborted with no partial writes.
type PersistenceError struct {
	Context string // device_id or owner id
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s): %v", e.Context, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
