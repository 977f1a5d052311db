package grpc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

// TokenExtractor extracts the session token from gRPC metadata. An empty
// string with a nil error means no token was sent.
type TokenExtractor func(ctx context.Context) (string, error)

// Extractor errors
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format is invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <token>")

	// ErrUnsupportedScheme indicates an unsupported authorization scheme was used.
	ErrUnsupportedScheme = errors.New("unsupported authorization scheme, expected: Bearer")
)

// cookieMetadataKeys lists where Cookie headers arrive: "cookie" from
// HTTP/2 clients and "grpcgateway-cookie" from grpc-gateway.
var cookieMetadataKeys = []string{"cookie", "grpcgateway-cookie"}

// CookieMetadataExtractor returns a TokenExtractor that reads the named
// cookie from the Cookie headers forwarded as metadata. Malformed cookie
// pairs are skipped, as browsers do.
func CookieMetadataExtractor(name string) TokenExtractor {
	return func(ctx context.Context) (string, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return "", nil
		}

		header := http.Header{}
		for _, key := range cookieMetadataKeys {
			for _, line := range md.Get(key) {
				header.Add("Cookie", line)
			}
		}
		if len(header) == 0 {
			return "", nil
		}

		request := &http.Request{Header: header}
		cookie, err := request.Cookie(name)
		if err != nil {
			// http.ErrNoCookie is the only error Cookie returns.
			return "", nil
		}
		return cookie.Value, nil
	}
}

// MetadataTokenExtractor extracts the session token from the "authorization"
// metadata key in the "Bearer <token>" format, for clients that cannot keep
// cookies.
//
// gRPC normalizes incoming metadata keys to lowercase, so this extractor only
// checks the lowercase "authorization" key.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil
	}

	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}

	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}

// MultiTokenExtractor returns the first token found by extractors. An
// extractor error stops the search.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(ctx context.Context) (string, error) {
		for _, extractor := range extractors {
			token, err := extractor(ctx)
			if err != nil {
				return "", err
			}
			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}
