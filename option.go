package sessionmiddleware

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/auth0/go-session-middleware/core"
)

// Option configures the SessionMiddleware.
// Returns error for validation failures.
type Option func(*SessionMiddleware) error

// WithCodec sets the codec used to sign and verify session tokens.
// Either WithCodec or WithManager is required.
//
// Example:
//
//	tokenCodec, err := codec.New(
//	    codec.WithSecret([]byte(os.Getenv("SESSION_SECRET"))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := sessionmiddleware.New(
//	    sessionmiddleware.WithCodec(tokenCodec),
//	)
func WithCodec(c core.Codec) Option {
	return func(m *SessionMiddleware) error {
		if c == nil {
			return ErrCodecNil
		}
		m.codec = c
		return nil
	}
}

// WithManager uses an already configured core.Manager, for instance one
// shared with the gRPC interceptors. It cannot be combined with WithCodec,
// WithCookie, WithTracerProvider or WithMetrics.
func WithManager(manager *core.Manager) Option {
	return func(m *SessionMiddleware) error {
		if manager == nil {
			return ErrManagerNil
		}
		m.manager = manager
		return nil
	}
}

// WithCookie sets the session cookie attributes. Empty fields keep the
// values of core.DefaultCookieConfig.
func WithCookie(cfg core.CookieConfig) Option {
	return func(m *SessionMiddleware) error {
		m.cookie = &cfg
		return nil
	}
}

// WithValidateOnOptions sets whether RequireSession checks OPTIONS requests.
//
// Default: true (OPTIONS requests are checked)
func WithValidateOnOptions(value bool) Option {
	return func(m *SessionMiddleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when RequireSession rejects a
// request. See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *SessionMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function that reads the session token from
// the request.
//
// Default: CookieTokenExtractor for the configured cookie name
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *SessionMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URLs that RequireSession lets through without
// a session. URLs can be full URLs or just paths. Excluded requests still get
// a Session, so a login handler can call EstablishSession.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *SessionMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionUrlsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware. It is also passed
// to the core.Manager built from WithCodec.
//
// Example:
//
//	middleware, err := sessionmiddleware.New(
//	    sessionmiddleware.WithCodec(tokenCodec),
//	    sessionmiddleware.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *SessionMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithTracerProvider enables OpenTelemetry spans for session operations.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(m *SessionMiddleware) error {
		if tp == nil {
			return ErrTracerProviderNil
		}
		m.tracerProvider = tp
		return nil
	}
}

// WithMetrics registers the session counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *SessionMiddleware) error {
		if reg == nil {
			return ErrRegistererNil
		}
		m.registerer = reg
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrCodecNil           = errors.New("codec cannot be nil (use WithCodec or WithManager)")
	ErrManagerNil         = errors.New("manager cannot be nil")
	ErrManagerConflict    = errors.New("WithManager cannot be combined with WithCodec, WithCookie, WithTracerProvider or WithMetrics")
	ErrErrorHandlerNil    = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil  = errors.New("tokenExtractor cannot be nil")
	ErrExclusionUrlsEmpty = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrTracerProviderNil  = errors.New("tracer provider cannot be nil")
	ErrRegistererNil      = errors.New("metrics registerer cannot be nil")
)
