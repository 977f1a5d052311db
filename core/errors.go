package core

import "errors"

// Sentinel errors for session handling.
var (
	// ErrUnauthorized is returned when the request carries no usable session
	// token. The reason (missing cookie, expired token, bad signature) is kept
	// in the error chain for logging but must not be exposed to clients.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCookieUnavailable is returned when the transport can no longer accept
	// a cookie write for the current request, typically because the response
	// has already been flushed. It is a server-side fault and is never retried.
	ErrCookieUnavailable = errors.New("cookie unavailable")

	// ErrTokenInvalid is returned by a Codec when a token cannot be verified.
	// It is typically wrapped by a ValidationError carrying a specific code.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrIdentityNotFound is returned when no resolved identity is stored in
	// the context.
	ErrIdentityNotFound = errors.New("identity not found in context")
)

// ValidationError wraps token validation errors with additional context.
// It provides structured error information that can be used for
// logging, metrics, and returning appropriate error responses.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "invalid_signature")
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is reports whether a token-related error is compared with ErrTokenInvalid.
// Configuration codes never match.
func (e *ValidationError) Is(target error) bool {
	if target != ErrTokenInvalid {
		return false
	}
	switch e.Code {
	case ErrorCodeConfigInvalid, ErrorCodeCodecNotSet:
		return false
	}
	return true
}

// Common error codes
const (
	ErrorCodeTokenMissing     = "token_missing"
	ErrorCodeTokenMalformed   = "token_malformed"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenNotYetValid = "token_not_yet_valid"
	ErrorCodeInvalidSignature = "invalid_signature"
	ErrorCodeInvalidAlgorithm = "invalid_algorithm"
	ErrorCodeInvalidIssuer    = "invalid_issuer"
	ErrorCodeInvalidClaims    = "invalid_claims"
	ErrorCodeConfigInvalid    = "config_invalid"
	ErrorCodeCodecNotSet      = "codec_not_set"
)

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorCode returns the ValidationError code found in err's chain, or an
// empty string when there is none.
func ErrorCode(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code
	}
	return ""
}

// unauthorizedError ties a resolution failure to ErrUnauthorized while
// keeping the underlying cause reachable through errors.Is and errors.As.
type unauthorizedError struct {
	details error
}

func (e *unauthorizedError) Error() string {
	if e.details == nil {
		return ErrUnauthorized.Error()
	}
	return ErrUnauthorized.Error() + ": " + e.details.Error()
}

func (e *unauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *unauthorizedError) Unwrap() error {
	return e.details
}

// Unauthorized wraps details so that the result matches ErrUnauthorized.
func Unauthorized(details error) error {
	return &unauthorizedError{details: details}
}
