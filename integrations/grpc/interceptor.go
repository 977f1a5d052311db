package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/auth0/go-session-middleware/core"
)

// SetCookieHeader is the response metadata key that carries session cookie
// mutations. HTTP gateways in front of the server forward it as Set-Cookie.
const SetCookieHeader = "set-cookie"

// SessionInterceptor resolves session cookies for gRPC servers.
type SessionInterceptor struct {
	manager         *core.Manager
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          core.Logger

	// Internal builder for accumulating manager options
	managerBuilder *managerBuilder
}

// New creates a new gRPC session interceptor with the provided options.
// Either WithManager or WithCodec is required.
func New(opts ...Option) (*SessionInterceptor, error) {
	interceptor := &SessionInterceptor{
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.manager == nil && interceptor.managerBuilder != nil {
		m, err := interceptor.managerBuilder.build()
		if err != nil {
			return nil, err
		}
		interceptor.manager = m
	}

	if interceptor.manager == nil {
		return nil, errors.New("manager is required, use WithManager or WithCodec option")
	}

	if interceptor.tokenExtractor == nil {
		interceptor.tokenExtractor = CookieMetadataExtractor(interceptor.manager.CookieName())
	}

	return interceptor, nil
}

// Manager returns the session manager used by the interceptor.
func (i *SessionInterceptor) Manager() *core.Manager {
	return i.manager
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that rejects
// calls without a valid session and stores the resolved identity in the
// request context.
func (i *SessionInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("Skipping session check for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		resolvedCtx, err := i.resolveRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(resolvedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that rejects
// streams without a valid session and stores the resolved identity in the
// stream context.
func (i *SessionInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("Skipping session check for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		resolvedCtx, err := i.resolveRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          resolvedCtx,
		})
	}
}

func (i *SessionInterceptor) resolveRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("Failed to extract session token from gRPC metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	identity, err := i.manager.Resolve(ctx, token)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("Session check failed",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	return core.SetIdentity(ctx, identity), nil
}

// Establish signs claims and sends the session cookie in the response header
// metadata of the current call. It must run before the handler returns or
// the stream sends its first message; afterwards it fails with
// core.ErrCookieUnavailable.
func (i *SessionInterceptor) Establish(ctx context.Context, claims core.Claims) error {
	directive, err := i.manager.Establish(ctx, claims)
	if err != nil {
		return err
	}

	if err := sendDirective(ctx, directive); err != nil {
		if i.logger != nil {
			i.logger.Error("Cannot establish session: response header unavailable", "error", err)
		}
		return fmt.Errorf("%w: %v", core.ErrCookieUnavailable, err)
	}
	return nil
}

// Destroy expires the session cookie of the current call. It is a no-op when
// the call carried no session cookie and never fails.
func (i *SessionInterceptor) Destroy(ctx context.Context) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		token = ""
	}

	directive, ok := i.manager.Destroy(ctx, token)
	if !ok {
		return
	}

	if err := sendDirective(ctx, directive); err != nil && i.logger != nil {
		i.logger.Warn("Cannot clear session cookie: response header unavailable", "error", err)
	}
}

func sendDirective(ctx context.Context, directive core.Directive) error {
	cookie := directive.HTTPCookie(isSecurePeer(ctx))
	return grpc.SetHeader(ctx, metadata.Pairs(SetCookieHeader, cookie.String()))
}

// isSecurePeer reports whether the client connected over TLS.
func isSecurePeer(ctx context.Context) bool {
	p, ok := peer.FromContext(ctx)
	if !ok || p.AuthInfo == nil {
		return false
	}
	switch p.AuthInfo.(type) {
	case credentials.TLSInfo, *credentials.TLSInfo:
		return true
	default:
		return false
	}
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the identity.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
