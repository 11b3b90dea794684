package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/triviaflash/internal/quiz"
)

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInvalidSelection    = "INVALID_SELECTION"
	ErrCodePrematureAdvance    = "PREMATURE_ADVANCE"
	ErrCodeEmptyQuestionSet    = "EMPTY_QUESTION_SET"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError creates a new CONFLICT error
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// FromQuizError maps session errors onto AppErrors. Errors that are already
// AppErrors pass through; anything unrecognised becomes INTERNAL_ERROR.
func FromQuizError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stderrors.Is(err, quiz.ErrInvalidSelection):
		return &AppError{Code: ErrCodeInvalidSelection, Message: "answer is not one of the current choices", Status: http.StatusConflict, Err: err}
	case stderrors.Is(err, quiz.ErrPrematureAdvance):
		return &AppError{Code: ErrCodePrematureAdvance, Message: "select an answer before advancing", Status: http.StatusConflict, Err: err}
	case stderrors.Is(err, quiz.ErrEmptyQuestionSet):
		return &AppError{Code: ErrCodeEmptyQuestionSet, Message: "the question provider returned no questions", Status: http.StatusBadGateway, Err: err}
	case stderrors.Is(err, quiz.ErrProviderUnavailable):
		return &AppError{Code: ErrCodeProviderUnavailable, Message: "questions could not be fetched", Status: http.StatusServiceUnavailable, Err: err}
	case stderrors.Is(err, quiz.ErrNotInProgress),
		stderrors.Is(err, quiz.ErrNotFinished),
		stderrors.Is(err, quiz.ErrFetchInFlight),
		stderrors.Is(err, quiz.ErrAlreadyLoaded):
		return &AppError{Code: ErrCodeConflict, Message: err.Error(), Status: http.StatusConflict, Err: err}
	default:
		return NewInternalError(err)
	}
}
