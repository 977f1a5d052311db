package sessionmiddleware

import (
	"errors"
	"net/http"

	"github.com/auth0/go-session-middleware/core"
)

// ErrorHandler is called when RequireSession rejects a request. The err can
// be checked against core.ErrUnauthorized and core.ErrCookieUnavailable. The
// default handler returns 401 for core.ErrUnauthorized and 500 for everything
// else. A custom ErrorHandler MUST write a response: RequireSession does not
// call the next handler after it.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is the default error handler implementation for the
// SessionMiddleware. The verification detail is never sent to the client.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, core.ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Session is missing or invalid."}`))
	case errors.Is(err, core.ErrCookieUnavailable):
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"cookie_unavailable","message":"Session cookie cannot be written."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal_error","message":"Something went wrong while checking the session."}`))
	}
}
