package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/auth0/go-session-middleware/core"
)

// ErrorHandler converts session errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps session errors to gRPC status codes. The reason a
// session was rejected never reaches the client.
func DefaultErrorHandler(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "session is missing or invalid")
	case errors.Is(err, ErrMultipleAuthHeaders),
		errors.Is(err, ErrInvalidAuthFormat),
		errors.Is(err, ErrUnsupportedScheme):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrCookieUnavailable):
		return status.Error(codes.Internal, "session cookie cannot be written")
	default:
		return status.Error(codes.Internal, "something went wrong while checking the session")
	}
}
