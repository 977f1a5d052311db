// Package sessionecho adapts the session middleware to the Echo framework.
//
//	manager, _ := core.New(core.WithCodec(tokenCodec))
//	sessions, _ := sessionecho.New(manager)
//
//	e := echo.New()
//	e.Use(sessions.Handler)
//	e.POST("/login", login)
//	e.GET("/me", me, sessions.RequireSession)
package sessionecho

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	sessionmiddleware "github.com/auth0/go-session-middleware"
	"github.com/auth0/go-session-middleware/core"
)

// sessionKey is the echo.Context key under which the session is stored.
const sessionKey = "github.com/auth0/go-session-middleware/session"

// ErrNoSession is returned by the helpers when Handler did not run.
var ErrNoSession = errors.New("no session attached to the echo context (use Handler)")

// Middleware holds the Echo session middleware functions.
type Middleware struct {
	manager        *core.Manager
	errorHandler   func(echo.Context, error) error
	tokenExtractor sessionmiddleware.TokenExtractor
	trustedProxies *sessionmiddleware.TrustedProxyConfig
	logger         core.Logger
}

// New creates the Echo adapter around manager.
func New(manager *core.Manager, opts ...Option) (*Middleware, error) {
	if manager == nil {
		return nil, errors.New("manager cannot be nil")
	}

	m := &Middleware{
		manager:        manager,
		errorHandler:   DefaultErrorHandler,
		tokenExtractor: sessionmiddleware.CookieTokenExtractor(manager.CookieName()),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler attaches a session to every request and never rejects it.
func (m *Middleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.attach(c)
		return next(c)
	}
}

// RequireSession rejects requests without a valid session through the error
// handler. It attaches a session itself when Handler did not run.
func (m *Middleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := m.attach(c)

		if _, err := s.resolve(); err != nil {
			if m.logger != nil {
				m.logger.Warn("Session check failed",
					"error", err,
					"method", c.Request().Method,
					"path", c.Request().URL.Path)
			}
			return m.errorHandler(c, err)
		}

		return next(c)
	}
}

func (m *Middleware) attach(c echo.Context) *session {
	if s, err := sessionFrom(c); err == nil && s.middleware == m {
		return s
	}

	s := &session{middleware: m, c: c}
	c.Set(sessionKey, s)
	return s
}

// DefaultErrorHandler answers 401 for core.ErrUnauthorized and 500 otherwise.
func DefaultErrorHandler(c echo.Context, err error) error {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"code":    "unauthorized",
			"message": "Session is missing or invalid.",
		})
	case errors.Is(err, core.ErrCookieUnavailable):
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"code":    "cookie_unavailable",
			"message": "Session cookie cannot be written.",
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"code":    "internal_error",
			"message": "Something went wrong while checking the session.",
		})
	}
}

// Establish signs claims into the session cookie. It fails with
// core.ErrCookieUnavailable once the response has been committed or when
// Handler did not run.
func Establish(c echo.Context, claims core.Claims) error {
	s, err := sessionFrom(c)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrCookieUnavailable, err)
	}
	return s.establish(claims)
}

// Destroy clears the session cookie. It never fails.
func Destroy(c echo.Context) {
	if s, err := sessionFrom(c); err == nil {
		s.destroy()
	}
}

// CurrentUser resolves the identity of the session. The result is cached
// for the rest of the request.
func CurrentUser(c echo.Context) (*core.Identity, error) {
	s, err := sessionFrom(c)
	if err != nil {
		return nil, core.Unauthorized(err)
	}
	return s.resolve()
}

func sessionFrom(c echo.Context) (*session, error) {
	if s, ok := c.Get(sessionKey).(*session); ok {
		return s, nil
	}
	return nil, ErrNoSession
}

type session struct {
	middleware *Middleware
	c          echo.Context

	mu        sync.Mutex
	extracted bool
	token     string
	tokenErr  error
	resolved  bool
	identity  *core.Identity
	err       error
}

func (s *session) establish(claims core.Claims) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c.Response().Committed {
		return core.ErrCookieUnavailable
	}

	directive, err := s.middleware.manager.Establish(s.c.Request().Context(), claims)
	if err != nil {
		return err
	}
	s.apply(directive)

	s.extracted, s.token, s.tokenErr = true, directive.Value, nil
	s.resolved = false
	return nil
}

func (s *session) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _ := s.tokenLocked()
	if directive, ok := s.middleware.manager.Destroy(s.c.Request().Context(), token); ok && !s.c.Response().Committed {
		s.apply(directive)
	}

	s.extracted, s.token, s.tokenErr = true, "", nil
	s.resolved = false
}

func (s *session) resolve() (*core.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.identity, s.err
	}

	token, err := s.tokenLocked()
	if err != nil {
		s.identity, s.err = nil, core.Unauthorized(
			core.NewValidationError(core.ErrorCodeTokenMalformed, "could not extract the session token", err),
		)
	} else {
		s.identity, s.err = s.middleware.manager.Resolve(s.c.Request().Context(), token)
	}
	s.resolved = true
	return s.identity, s.err
}

func (s *session) tokenLocked() (string, error) {
	if !s.extracted {
		s.token, s.tokenErr = s.middleware.tokenExtractor(s.c.Request())
		s.extracted = true
	}
	return s.token, s.tokenErr
}

func (s *session) apply(d core.Directive) {
	s.c.SetCookie(d.HTTPCookie(s.middleware.trustedProxies.IsSecureRequest(s.c.Request())))
}
