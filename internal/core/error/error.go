package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrRemoteService     = errors.New("remote service error")
	ErrNotFound          = errors.New("not found")
	ErrLoopLimitExceeded = errors.New("function call limit exceeded")
	ErrUnknownFunction   = errors.New("unknown function")
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "something went wrong on our side"
	// RemoteServiceMessage is shown when the completion API cannot be reached.
	RemoteServiceMessage = "the assistant service is unavailable right now, please try again"
	// LoopLimitMessage is shown when the model keeps asking for functions.
	LoopLimitMessage = "I could not finish that request, please try rephrasing it"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// AppError wraps an underlying error with its kind, an HTTP-style status and a safe message.
type AppError struct {
	Kind    error
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind or matches the underlying error.
func (e *AppError) Is(target error) bool {
	if e.Kind != nil && target == e.Kind {
		return true
	}
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// New creates a new AppError with the provided information.
func New(kind, err error, status int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Err:     err,
		Status:  status,
		Message: message,
	}
}

func Configuration(err error) *AppError {
	return New(ErrConfiguration, err, http.StatusInternalServerError, "invalid configuration")
}

func RemoteService(err error) *AppError {
	return New(ErrRemoteService, err, http.StatusBadGateway, RemoteServiceMessage)
}

func NotFound(identifier string) *AppError {
	return New(ErrNotFound, nil, http.StatusNotFound, fmt.Sprintf("no product found for %q", identifier))
}

func LoopLimitExceeded(limit int) *AppError {
	return New(ErrLoopLimitExceeded, fmt.Errorf("more than %d function round trips", limit),
		http.StatusLoopDetected, LoopLimitMessage)
}

func UnknownFunction(name string) *AppError {
	return New(ErrUnknownFunction, nil, http.StatusBadRequest, fmt.Sprintf("unknown function %q", name))
}

// UserMessage returns the text the shell shows for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return SystemErrorMessage
}
