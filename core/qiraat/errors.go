package qiraat

import (
	"errors"
	"fmt"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// Sentinel errors for common cases
var (
	// ErrMissingData indicates a lineage has no transcription for a
	// requested verse. Never fatal; the lineage is excluded from that
	// verse's partition and surfaced by the coverage auditor.
	ErrMissingData = errors.New("missing data")

	// ErrUnknownLineage indicates a lineage code absent from the
	// catalog.
	ErrUnknownLineage = errors.New("unknown lineage")

	// ErrInvalidInput indicates invalid input or validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError wraps a persistence failure with the operation and verse
// it interrupted. Store failures are the only fatal error class: the
// verse's transaction rolls back, the run aborts, and verses already
// committed stay intact.
type StoreError struct {
	Op  string         // Operation being performed (e.g., "read corpus", "replace differences")
	Key quran.VerseKey // Verse being processed, if any
	Err error          // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != (quran.VerseKey{}) {
		return fmt.Sprintf("store failure: %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store failure: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation failure with context.
type ValidationError struct {
	Field   string // Field that failed validation
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidation creates a ValidationError.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
