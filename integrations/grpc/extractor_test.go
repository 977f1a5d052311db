package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestCookieMetadataExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		md        metadata.MD
		wantToken string
	}{
		{
			name: "no metadata",
		},
		{
			name: "no cookie header",
			md:   metadata.Pairs("other-header", "value"),
		},
		{
			name:      "single cookie",
			md:        metadata.Pairs("cookie", "auth=token-1"),
			wantToken: "token-1",
		},
		{
			name:      "cookie among others",
			md:        metadata.Pairs("cookie", "theme=dark; auth=token-1; lang=en"),
			wantToken: "token-1",
		},
		{
			name:      "cookie split across headers",
			md:        metadata.Pairs("cookie", "theme=dark", "cookie", "auth=token-1"),
			wantToken: "token-1",
		},
		{
			name:      "cookie forwarded by grpc-gateway",
			md:        metadata.Pairs("grpcgateway-cookie", "auth=token-1"),
			wantToken: "token-1",
		},
		{
			name: "other cookies only",
			md:   metadata.Pairs("cookie", "theme=dark"),
		},
		{
			name:      "malformed pairs are skipped",
			md:        metadata.Pairs("cookie", "=oops; auth=token-1"),
			wantToken: "token-1",
		},
	}

	extractor := CookieMetadataExtractor("auth")
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if testCase.md != nil {
				ctx = metadata.NewIncomingContext(ctx, testCase.md)
			}

			token, err := extractor(ctx)

			assert.NoError(t, err)
			assert.Equal(t, testCase.wantToken, token)
		})
	}
}

func TestMetadataTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		md        metadata.MD
		wantToken string
		wantErr   error
	}{
		{
			name: "no metadata",
		},
		{
			name: "no authorization header",
			md:   metadata.Pairs("other-header", "value"),
		},
		{
			name:      "valid bearer token",
			md:        metadata.Pairs("authorization", "Bearer token-1"),
			wantToken: "token-1",
		},
		{
			name:      "case-insensitive scheme",
			md:        metadata.Pairs("authorization", "bearer token-1"),
			wantToken: "token-1",
		},
		{
			name:    "multiple authorization headers",
			md:      metadata.Pairs("authorization", "Bearer token1", "authorization", "Bearer token2"),
			wantErr: ErrMultipleAuthHeaders,
		},
		{
			name:    "no scheme",
			md:      metadata.Pairs("authorization", "token123"),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "scheme only",
			md:      metadata.Pairs("authorization", "Bearer"),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "too many parts",
			md:      metadata.Pairs("authorization", "Bearer token extra"),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "unsupported scheme",
			md:      metadata.Pairs("authorization", "Basic dXNlcjpwYXNz"),
			wantErr: ErrUnsupportedScheme,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if testCase.md != nil {
				ctx = metadata.NewIncomingContext(ctx, testCase.md)
			}

			token, err := MetadataTokenExtractor(ctx)

			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Equal(t, testCase.wantToken, token)
		})
	}
}

func TestMultiTokenExtractor(t *testing.T) {
	cookie := CookieMetadataExtractor("auth")

	t.Run("it returns the first token found", func(t *testing.T) {
		md := metadata.Pairs("authorization", "Bearer from-header", "cookie", "auth=from-cookie")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		token, err := MultiTokenExtractor(cookie, MetadataTokenExtractor)(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "from-cookie", token)
	})

	t.Run("it falls through to the next extractor", func(t *testing.T) {
		md := metadata.Pairs("authorization", "Bearer from-header")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		token, err := MultiTokenExtractor(cookie, MetadataTokenExtractor)(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "from-header", token)
	})

	t.Run("it stops on error", func(t *testing.T) {
		failing := func(context.Context) (string, error) { return "", errors.New("boom") }

		token, err := MultiTokenExtractor(failing, cookie)(context.Background())

		assert.EqualError(t, err, "boom")
		assert.Empty(t, token)
	})

	t.Run("no extractors", func(t *testing.T) {
		token, err := MultiTokenExtractor()(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, token)
	})
}
