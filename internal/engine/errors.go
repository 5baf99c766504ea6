package engine

import (
	"fmt"
	"strconv"

	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// ValidationError means the caller supplied input that violates a
// precondition. Correct the input and retry; never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced booking, driver or user does not exist
// (or was logically deleted).
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

func NewNotFoundError(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, Ref: strconv.FormatUint(uint64(id), 10)}
}

// InvalidTransitionError names a status edge that is not part of the booking
// lifecycle.
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition %s -> %s", e.From, e.To)
}

// ConflictError means the optimistic status check failed: the booking's
// status changed between read and write. Callers should re-read and decide
// whether to retry.
type ConflictError struct {
	BookingID uint
	Expected  models.BookingStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking %d is no longer %s", e.BookingID, e.Expected)
}

// StoreError wraps an underlying persistence failure. It is fatal to the
// operation and surfaced unmodified.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
