package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a validation error code
type ErrorCode string

const (
	// Public categories; these are what clients see.
	ErrMissingToken ErrorCode = "MISSING_TOKEN"
	ErrInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrConfigError  ErrorCode = "CONFIG_ERROR"

	// Finer reasons, reported in security logs and folded into ErrInvalidToken.
	ErrExpired                  ErrorCode = "EXPIRED"
	ErrInvalidSignature         ErrorCode = "INVALID_SIGNATURE"
	ErrMalformed                ErrorCode = "MALFORMED"
	ErrNoneAlgorithm            ErrorCode = "NONE_ALGORITHM"
	ErrUnsupportedAlgorithm     ErrorCode = "UNSUPPORTED_ALGORITHM"
	ErrMalformedAlgorithmHeader ErrorCode = "MALFORMED_ALGORITHM_HEADER"
	ErrMissingClaim             ErrorCode = "MISSING_CLAIM"
)

// User-visible rejection messages
const (
	MessageTokenMissing = "unauthorized access - token missing"
	MessageTokenInvalid = "unauthorized access - invalid token"
)

// ValidationError represents a JWT validation error with a code and message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// Category folds the code into MISSING_TOKEN, INVALID_TOKEN or CONFIG_ERROR
func (e *ValidationError) Category() ErrorCode {
	switch e.Code {
	case ErrMissingToken, ErrConfigError:
		return e.Code
	default:
		return ErrInvalidToken
	}
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// IsMissingToken reports whether err means no credential was presented
func IsMissingToken(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) && valErr.Category() == ErrMissingToken
}

// IsInvalidToken reports whether err means a credential was presented but rejected
func IsInvalidToken(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) && valErr.Category() == ErrInvalidToken
}

// getErrorCode extracts the fine-grained code from a validation error
func getErrorCode(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return string(valErr.Code)
	}
	return "UNKNOWN"
}

// rejectionMessage maps an error onto one of the two client-facing messages
func rejectionMessage(err error) string {
	if IsMissingToken(err) {
		return MessageTokenMissing
	}
	return MessageTokenInvalid
}
