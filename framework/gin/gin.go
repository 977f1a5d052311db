// Package sessiongin adapts the session middleware to the Gin framework.
//
//	manager, _ := core.New(core.WithCodec(tokenCodec))
//	sessions, _ := sessiongin.New(manager)
//
//	r := gin.New()
//	r.Use(sessions.Handler())
//	r.POST("/login", login)
//	r.GET("/me", sessions.RequireSession(), me)
package sessiongin

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	sessionmiddleware "github.com/auth0/go-session-middleware"
	"github.com/auth0/go-session-middleware/core"
)

// sessionKey is the gin.Context key under which the session is stored.
const sessionKey = "github.com/auth0/go-session-middleware/session"

// ErrNoSession is returned by the helpers when Handler did not run.
var ErrNoSession = errors.New("no session attached to the gin context (use Handler)")

// Middleware holds the Gin session handlers.
type Middleware struct {
	manager        *core.Manager
	errorHandler   func(*gin.Context, error)
	tokenExtractor sessionmiddleware.TokenExtractor
	trustedProxies *sessionmiddleware.TrustedProxyConfig
	logger         core.Logger
}

// New creates the Gin adapter around manager.
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

// Handler attaches a session to every request and never aborts.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.attach(c)
		c.Next()
	}
}

// RequireSession aborts requests without a valid session through the error
// handler. It attaches a session itself when Handler did not run.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.attach(c)

		if _, err := s.resolve(); err != nil {
			if m.logger != nil {
				m.logger.Warn("Session check failed",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path)
			}
			m.errorHandler(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *Middleware) attach(c *gin.Context) *session {
	if s, err := sessionFrom(c); err == nil && s.middleware == m {
		return s
	}

	s := &session{middleware: m, c: c}
	c.Set(sessionKey, s)
	return s
}

// DefaultErrorHandler answers 401 for core.ErrUnauthorized and 500 otherwise.
func DefaultErrorHandler(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "unauthorized",
			"message": "Session is missing or invalid.",
		})
	case errors.Is(err, core.ErrCookieUnavailable):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    "cookie_unavailable",
			"message": "Session cookie cannot be written.",
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "Something went wrong while checking the session.",
		})
	}
}

// Establish signs claims into the session cookie. It fails with
// core.ErrCookieUnavailable once the response has been written or when
// Handler did not run.
func Establish(c *gin.Context, claims core.Claims) error {
	s, err := sessionFrom(c)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrCookieUnavailable, err)
	}
	return s.establish(claims)
}

// Destroy clears the session cookie. It never fails.
func Destroy(c *gin.Context) {
	if s, err := sessionFrom(c); err == nil {
		s.destroy()
	}
}

// CurrentUser resolves the identity of the session. The result is cached
// for the rest of the request.
func CurrentUser(c *gin.Context) (*core.Identity, error) {
	s, err := sessionFrom(c)
	if err != nil {
		return nil, core.Unauthorized(err)
	}
	return s.resolve()
}

func sessionFrom(c *gin.Context) (*session, error) {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session); ok {
			return s, nil
		}
	}
	return nil, ErrNoSession
}

type session struct {
	middleware *Middleware
	c          *gin.Context

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

	if s.c.Writer.Written() {
		return core.ErrCookieUnavailable
	}

	directive, err := s.middleware.manager.Establish(s.c.Request.Context(), claims)
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
	if directive, ok := s.middleware.manager.Destroy(s.c.Request.Context(), token); ok && !s.c.Writer.Written() {
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
		s.identity, s.err = s.middleware.manager.Resolve(s.c.Request.Context(), token)
	}
	s.resolved = true
	return s.identity, s.err
}

func (s *session) tokenLocked() (string, error) {
	if !s.extracted {
		s.token, s.tokenErr = s.middleware.tokenExtractor(s.c.Request)
		s.extracted = true
	}
	return s.token, s.tokenErr
}

func (s *session) apply(d core.Directive) {
	secure := d.IsSecure(s.middleware.trustedProxies.IsSecureRequest(s.c.Request))
	s.c.SetSameSite(d.SameSite)
	s.c.SetCookie(d.Name, d.Value, d.MaxAge, d.Path, d.Domain, secure, true)
}
