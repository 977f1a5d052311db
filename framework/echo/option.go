package sessionecho

import (
	"errors"

	"github.com/labstack/echo/v4"

	sessionmiddleware "github.com/auth0/go-session-middleware"
	"github.com/auth0/go-session-middleware/core"
)

// Option is a function that configures the middleware
type Option func(*Middleware) error

// WithErrorHandler sets a custom error handler for RequireSession.
func WithErrorHandler(handler func(echo.Context, error) error) Option {
	return func(m *Middleware) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		m.errorHandler = handler
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor
func WithTokenExtractor(extractor sessionmiddleware.TokenExtractor) Option {
	return func(m *Middleware) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		m.tokenExtractor = extractor
		return nil
	}
}

// WithTrustedProxies configures which forwarded headers decide whether the
// request arrived over HTTPS.
func WithTrustedProxies(config *sessionmiddleware.TrustedProxyConfig) Option {
	return func(m *Middleware) error {
		m.trustedProxies = config
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger core.Logger) Option {
	return func(m *Middleware) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		m.logger = logger
		return nil
	}
}
