package sessionmiddleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/auth0/go-session-middleware/core"
)

// SessionMiddleware attaches a Session to every request and optionally gates
// handlers on a valid session.
type SessionMiddleware struct {
	manager             *core.Manager
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	validateOnOptions   bool
	exclusionURLHandler ExclusionURLHandler
	trustedProxies      *TrustedProxyConfig
	logger              Logger

	// Temporary fields used during construction
	codec          core.Codec
	cookie         *core.CookieConfig
	tracerProvider oteltrace.TracerProvider
	registerer     prometheus.Registerer
}

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger = core.Logger

// ExclusionURLHandler is a function that takes in a http.Request and returns
// true if the request should skip the RequireSession gate.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new SessionMiddleware instance with the supplied options.
// Either WithCodec or WithManager is required.
//
// Example:
//
//	tokenCodec, err := codec.New(codec.WithSecret(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := sessionmiddleware.New(
//	    sessionmiddleware.WithCodec(tokenCodec),
//	    sessionmiddleware.WithExclusionUrls([]string{"/login"}),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*SessionMiddleware, error) {
	m := &SessionMiddleware{
		validateOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	if err := m.createManager(); err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	m.applyDefaults()

	return m, nil
}

// validate ensures all required fields are set
func (m *SessionMiddleware) validate() error {
	if m.manager == nil && m.codec == nil {
		return ErrCodecNil
	}
	if m.manager != nil && (m.codec != nil || m.cookie != nil || m.tracerProvider != nil || m.registerer != nil) {
		return ErrManagerConflict
	}
	return nil
}

// createManager builds the core.Manager unless one was supplied with WithManager.
func (m *SessionMiddleware) createManager() error {
	if m.manager != nil {
		return nil
	}

	coreOpts := []core.Option{core.WithCodec(m.codec)}
	if m.cookie != nil {
		coreOpts = append(coreOpts, core.WithCookie(*m.cookie))
	}
	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}
	if m.tracerProvider != nil {
		coreOpts = append(coreOpts, core.WithTracerProvider(m.tracerProvider))
	}
	if m.registerer != nil {
		coreOpts = append(coreOpts, core.WithMetrics(m.registerer))
	}

	manager, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.manager = manager
	return nil
}

// applyDefaults sets default values for optional fields
func (m *SessionMiddleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = CookieTokenExtractor(m.manager.CookieName())
	}
}

// Manager returns the underlying session manager.
func (m *SessionMiddleware) Manager() *core.Manager {
	return m.manager
}

// Handler attaches a Session to the request context and calls next. It never
// rejects a request; handlers decide what to do with the session.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w, r = m.attach(w, r)
		next.ServeHTTP(w, r)
	})
}

// RequireSession attaches a Session like Handler and additionally resolves
// the current user before calling next. Requests without a valid session are
// answered by the error handler and never reach next.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w, r = m.attach(w, r)

		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("Skipping session check for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("Skipping session check for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		identity, err := FromContext(r.Context()).ResolveCurrentUser()
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("Session check failed",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			m.errorHandler(w, r, err)
			return
		}

		r = r.WithContext(core.SetIdentity(r.Context(), identity))
		next.ServeHTTP(w, r)
	})
}

// attach reuses the Session of an outer middleware, or creates one.
func (m *SessionMiddleware) attach(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request) {
	if s := FromContext(r.Context()); s != nil && s.manager == m.manager {
		return w, r
	}

	tw := newTrackingWriter(w)
	s := m.newSession(tw, r)
	r = r.WithContext(withSession(r.Context(), s))
	s.request = r
	return tw, r
}

// CurrentUser returns the identity of the session attached to ctx. It is the
// identity stored by RequireSession when present, otherwise the session is
// resolved on demand.
func CurrentUser(ctx context.Context) (*core.Identity, error) {
	if identity, err := core.GetIdentity(ctx); err == nil {
		return identity, nil
	}

	s := FromContext(ctx)
	if s == nil {
		return nil, core.ErrIdentityNotFound
	}
	return s.ResolveCurrentUser()
}

// HasSession reports whether RequireSession stored an identity in ctx.
func HasSession(ctx context.Context) bool {
	return core.HasIdentity(ctx)
}
