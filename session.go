package sessionmiddleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/auth0/go-session-middleware/core"
)

type contextKey int

const sessionKey contextKey = iota

// Session is the request-scoped capability set: it can establish, destroy
// and resolve the session of the request it was attached to. It is safe for
// concurrent use by the goroutines serving one request.
type Session struct {
	manager        *core.Manager
	writer         *trackingWriter
	request        *http.Request
	tokenExtractor TokenExtractor
	trustedProxies *TrustedProxyConfig
	logger         Logger

	mu        sync.Mutex
	extracted bool
	token     string
	tokenErr  error
	resolved  bool
	identity  *core.Identity
	err       error
}

func (m *SessionMiddleware) newSession(w *trackingWriter, r *http.Request) *Session {
	return &Session{
		manager:        m.manager,
		writer:         w,
		request:        r,
		tokenExtractor: m.tokenExtractor,
		trustedProxies: m.trustedProxies,
		logger:         m.logger,
	}
}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the Session attached by Handler or RequireSession, or
// nil when the request did not go through the middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// EstablishSession signs claims and sets the session cookie on the response.
//
// It returns core.ErrCookieUnavailable when the response headers were
// already written, as the cookie could no longer reach the client, or when
// the request did not go through the middleware (s is nil).
func (s *Session) EstablishSession(claims core.Claims) error {
	if s == nil {
		return core.ErrCookieUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil || s.writer.Written() {
		if s.logger != nil {
			s.logger.Error("Cannot establish session: response already written")
		}
		return core.ErrCookieUnavailable
	}

	directive, err := s.manager.Establish(s.request.Context(), claims)
	if err != nil {
		return err
	}

	http.SetCookie(s.writer, directive.HTTPCookie(s.trustedProxies.IsSecureRequest(s.request)))

	s.extracted = true
	s.token, s.tokenErr = directive.Value, nil
	s.resetLocked()
	return nil
}

// DestroySession clears the session cookie. It is a no-op when the request
// carried no session cookie or has no Session, and never fails.
func (s *Session) DestroySession() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, _ := s.tokenLocked()
	directive, ok := s.manager.Destroy(s.request.Context(), token)
	if ok {
		if s.writer == nil || s.writer.Written() {
			if s.logger != nil {
				s.logger.Warn("Cannot clear session cookie: response already written")
			}
		} else {
			http.SetCookie(s.writer, directive.HTTPCookie(s.trustedProxies.IsSecureRequest(s.request)))
		}
	}

	s.extracted = true
	s.token, s.tokenErr = "", nil
	s.resetLocked()
}

// ResolveCurrentUser verifies the session cookie and returns the identity it
// carries. Every failure matches core.ErrUnauthorized. The result is cached
// until the session is established or destroyed again.
func (s *Session) ResolveCurrentUser() (*core.Identity, error) {
	if s == nil {
		return nil, core.Unauthorized(core.ErrIdentityNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.identity, s.err
	}

	token, err := s.tokenLocked()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to extract session token", "error", err)
		}
		s.identity, s.err = nil, core.Unauthorized(
			core.NewValidationError(core.ErrorCodeTokenMalformed, "could not extract the session token", err),
		)
	} else {
		s.identity, s.err = s.manager.Resolve(s.request.Context(), token)
	}

	s.resolved = true
	return s.identity, s.err
}

func (s *Session) tokenLocked() (string, error) {
	if !s.extracted {
		s.token, s.tokenErr = s.tokenExtractor(s.request)
		s.extracted = true
	}
	return s.token, s.tokenErr
}

func (s *Session) resetLocked() {
	s.resolved = false
	s.identity = nil
	s.err = nil
}

// trackingWriter records whether the response headers have been sent.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func newTrackingWriter(w http.ResponseWriter) *trackingWriter {
	if tw, ok := w.(*trackingWriter); ok {
		return tw
	}
	return &trackingWriter{ResponseWriter: w}
}

func (w *trackingWriter) WriteHeader(statusCode int) {
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Flush() {
	w.written = true
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Written reports whether the response headers have been sent.
func (w *trackingWriter) Written() bool {
	return w.written
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
