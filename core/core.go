// Package core provides the framework-agnostic session logic shared by every
// transport adapter (net/http, Gin, Echo, gRPC).
//
// The Manager signs and verifies session tokens through a Codec and turns
// session changes into cookie Directives that the adapters apply.
package core

import (
	"context"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Codec signs claims into session tokens and verifies them back.
// Verify must return an error matching ErrTokenInvalid for any token that
// cannot be trusted, and must not panic on malformed input.
type Codec interface {
	Sign(ctx context.Context, claims Claims) (string, error)
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Logger defines an optional logging interface for the core.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Manager is the framework-agnostic session engine.
type Manager struct {
	codec   Codec
	cookie  CookieConfig
	logger  Logger
	tracer  oteltrace.Tracer
	metrics *Metrics
}

// Establish signs claims into a token and returns the directive that stores
// it in the session cookie.
func (m *Manager) Establish(ctx context.Context, claims Claims) (_ Directive, err error) {
	ctx, span := m.startSpan(ctx, SpanEstablish)
	defer func() {
		m.metrics.observeEstablish(endSpan(span, err))
	}()

	if err := claims.Validate(); err != nil {
		return Directive{}, err
	}
	span.SetAttributes(AttrSubject.String(claims.Subject))

	token, err := m.codec.Sign(ctx, claims)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("Failed to sign session token", "error", err)
		}
		return Directive{}, err
	}

	if m.logger != nil {
		m.logger.Debug("Session established", "subject", claims.Subject)
	}

	return Directive{
		Action:   ActionSet,
		Name:     m.cookie.Name,
		Value:    token,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   int(m.cookie.MaxAge / time.Second),
		SameSite: m.cookie.SameSite,
		Secure:   m.cookie.Secure,
	}, nil
}

// Destroy returns the directive that clears the session cookie. The boolean
// is false when there is no session cookie to clear, in which case the
// directive must not be applied.
func (m *Manager) Destroy(ctx context.Context, token string) (Directive, bool) {
	if token == "" {
		return Directive{}, false
	}

	_, span := m.startSpan(ctx, SpanDestroy)
	endSpan(span, nil)
	m.metrics.observeDestroy()

	if m.logger != nil {
		m.logger.Debug("Session destroyed")
	}

	return Directive{
		Action:   ActionRemove,
		Name:     m.cookie.Name,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   -1,
		SameSite: m.cookie.SameSite,
		Secure:   m.cookie.Secure,
	}, true
}

// Resolve verifies the session token and returns the identity it carries.
// Every failure matches ErrUnauthorized; the codec error stays in the chain.
func (m *Manager) Resolve(ctx context.Context, token string) (_ *Identity, err error) {
	ctx, span := m.startSpan(ctx, SpanResolve)
	defer func() {
		m.metrics.observeResolve(endSpan(span, err))
	}()

	if token == "" {
		if m.logger != nil {
			m.logger.Debug("No session token provided")
		}
		return nil, Unauthorized(NewValidationError(ErrorCodeTokenMissing, "session token is missing", nil))
	}

	start := time.Now()
	claims, err := m.codec.Verify(ctx, token)
	duration := time.Since(start)

	if err != nil {
		if m.logger != nil {
			m.logger.Warn("Session token verification failed", "error", err, "duration", duration)
		}
		return nil, Unauthorized(err)
	}
	if claims == nil || claims.Subject == "" {
		return nil, Unauthorized(NewValidationError(ErrorCodeInvalidClaims, "subject claim is missing", nil))
	}

	if m.logger != nil {
		m.logger.Debug("Session token verified", "duration", duration)
	}

	return IdentityFromClaims(claims), nil
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string {
	return m.cookie.Name
}

// CookieConfig returns a copy of the configured cookie attributes.
func (m *Manager) CookieConfig() CookieConfig {
	return m.cookie
}
