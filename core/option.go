package core

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Option is a function that configures the Manager.
// Options return errors to enable validation during construction.
type Option func(*Manager) error

// New creates a new Manager with the provided options.
//
// The Manager must be configured with a Codec using WithCodec.
// All other options fall back to DefaultCookieConfig.
//
// Example:
//
//	manager, err := core.New(
//	    core.WithCodec(tokenCodec),
//	    core.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		cookie: DefaultCookieConfig(),
		tracer: defaultTracer(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// validate ensures all required fields are set.
func (m *Manager) validate() error {
	if m.codec == nil {
		return NewValidationError(
			ErrorCodeCodecNotSet,
			"codec is required but not set (use WithCodec option)",
			nil,
		)
	}
	return m.cookie.validate()
}

// WithCodec sets the token codec. This is a required option.
func WithCodec(codec Codec) Option {
	return func(m *Manager) error {
		if codec == nil {
			return errors.New("codec cannot be nil")
		}
		m.codec = codec
		return nil
	}
}

// WithCookie replaces the session cookie attributes. Empty Name and Path
// fields and a zero MaxAge keep their defaults.
func WithCookie(cfg CookieConfig) Option {
	return func(m *Manager) error {
		if cfg.Name == "" {
			cfg.Name = m.cookie.Name
		}
		if cfg.Path == "" {
			cfg.Path = m.cookie.Path
		}
		if cfg.MaxAge == 0 {
			cfg.MaxAge = m.cookie.MaxAge
		}
		if cfg.MaxAge < 0 {
			return errors.New("cookie max age cannot be negative")
		}
		if cfg.SameSite == 0 {
			cfg.SameSite = m.cookie.SameSite
		}
		m.cookie = cfg
		return nil
	}
}

// WithLogger sets an optional logger for the Manager.
//
// Example:
//
//	manager, _ := core.New(
//	    core.WithCodec(tokenCodec),
//	    core.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		m.logger = logger
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for the
// session.establish, session.resolve and session.destroy spans.
//
// Default: a noop provider.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(m *Manager) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		m.tracer = tp.Tracer(TracerName)
		return nil
	}
}

// WithMetrics registers the session counters on reg and updates them on
// every operation.
//
// Default: no metrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Manager) error {
		metrics, err := NewMetrics(reg)
		if err != nil {
			return err
		}
		m.metrics = metrics
		return nil
	}
}
