package grpc

import (
	"errors"

	"github.com/auth0/go-session-middleware/core"
)

// Option configures the session interceptor.
type Option func(*SessionInterceptor) error

// managerBuilder helps build a core.Manager with accumulated options.
type managerBuilder struct {
	codec  core.Codec
	cookie *core.CookieConfig
	logger core.Logger
}

func (b *managerBuilder) build() (*core.Manager, error) {
	if b.codec == nil {
		return nil, errors.New("codec is required")
	}

	opts := []core.Option{
		core.WithCodec(b.codec),
	}

	if b.cookie != nil {
		opts = append(opts, core.WithCookie(*b.cookie))
	}
	if b.logger != nil {
		opts = append(opts, core.WithLogger(b.logger))
	}

	return core.New(opts...)
}

func (i *SessionInterceptor) builder() *managerBuilder {
	if i.managerBuilder == nil {
		i.managerBuilder = &managerBuilder{}
	}
	return i.managerBuilder
}

// WithManager uses an existing session manager, typically the one shared
// with the HTTP side of the service. It cannot be combined with WithCodec
// or WithCookie.
func WithManager(manager *core.Manager) Option {
	return func(i *SessionInterceptor) error {
		if manager == nil {
			return errors.New("manager cannot be nil")
		}
		if i.managerBuilder != nil && (i.managerBuilder.codec != nil || i.managerBuilder.cookie != nil) {
			return errors.New("WithManager cannot be combined with WithCodec or WithCookie")
		}
		i.manager = manager
		return nil
	}
}

// WithCodec builds a dedicated manager around codec.
//
// Example:
//
//	interceptor, _ := grpc.New(
//	    grpc.WithCodec(tokenCodec),
//	    grpc.WithLogger(logger),
//	)
func WithCodec(codec core.Codec) Option {
	return func(i *SessionInterceptor) error {
		if codec == nil {
			return errors.New("codec cannot be nil")
		}
		if i.manager != nil {
			return errors.New("WithManager cannot be combined with WithCodec or WithCookie")
		}
		i.builder().codec = codec
		return nil
	}
}

// WithCookie overrides the session cookie attributes of a manager built
// with WithCodec.
func WithCookie(cfg core.CookieConfig) Option {
	return func(i *SessionInterceptor) error {
		if i.manager != nil {
			return errors.New("WithManager cannot be combined with WithCodec or WithCookie")
		}
		i.builder().cookie = &cfg
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor. It is also handed
// to a manager built with WithCodec.
func WithLogger(logger core.Logger) Option {
	return func(i *SessionInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.builder().logger = logger
		i.logger = logger
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor function.
// Default is CookieMetadataExtractor for the manager's cookie name.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *SessionInterceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler function.
// Default is DefaultErrorHandler which maps errors to gRPC status codes.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *SessionInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from the session check.
// Methods should be provided in the format: "/package.Service/Method"
// Example: "/myapp.Auth/Login", "/grpc.health.v1.Health/Check"
func WithExcludedMethods(methods ...string) Option {
	return func(i *SessionInterceptor) error {
		if i.excludedMethods == nil {
			i.excludedMethods = make(map[string]bool)
		}
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}
