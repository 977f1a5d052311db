// Package jwtgo is a core.Codec built on the golang-jwt/jwt package.
//
// It produces and accepts the same tokens as package codec and can be
// swapped in wherever a core.Codec is expected.
package jwtgo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/auth0/go-session-middleware/codec"
	"github.com/auth0/go-session-middleware/core"
)

var (
	// ErrSecretRequired is returned by New when no secret was configured.
	ErrSecretRequired = errors.New("secret is required (use WithSecret)")

	errUnexpectedAlgorithm = errors.New("unexpected signing algorithm")
)

// sessionClaims is the wire shape of a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	ScopeContext any `json:"scope_context,omitempty"`
}

// Option is how options for the codec are set up.
type Option func(*Codec) error

// WithSecret sets the HMAC secret. This is a required option.
func WithSecret(secret []byte) Option {
	return func(c *Codec) error {
		if len(secret) == 0 {
			return ErrSecretRequired
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithAlgorithm sets the HMAC algorithm. Defaults to HS256.
func WithAlgorithm(algorithm codec.SignatureAlgorithm) Option {
	return func(c *Codec) error {
		method, ok := jwt.GetSigningMethod(string(algorithm)).(*jwt.SigningMethodHMAC)
		if !ok {
			return fmt.Errorf("unsupported signature algorithm: %s", algorithm)
		}
		c.method = method
		return nil
	}
}

// WithTTL sets the validity window of issued tokens. Defaults to 7 days.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) error {
		if ttl <= 0 {
			return errors.New("ttl must be positive")
		}
		c.ttl = ttl
		return nil
	}
}

// WithIssuer sets the iss claim written on Sign and required on Verify.
func WithIssuer(issuer string) Option {
	return func(c *Codec) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		c.issuer = issuer
		return nil
	}
}

// WithAllowedClockSkew sets the leeway applied to exp and nbf.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(c *Codec) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		c.leeway = skew
		return nil
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// Codec signs and verifies session tokens using golang-jwt.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

var _ core.Codec = (*Codec)(nil)

// New sets up a new Codec. WithSecret is required.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		method: jwt.SigningMethodHS256,
		ttl:    core.DefaultSessionTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if len(c.secret) == 0 {
		return nil, ErrSecretRequired
	}

	return c, nil
}

// Sign issues a signed token for claims.
func (c *Codec) Sign(_ context.Context, claims core.Claims) (string, error) {
	if err := claims.Validate(); err != nil {
		return "", err
	}

	now := c.now()
	wire := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	if claims.ScopeContext != "" {
		wire.ScopeContext = claims.ScopeContext
	}

	signed, err := jwt.NewWithClaims(c.method, wire).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign the token: %w", err)
	}

	return signed, nil
}

// Verify validates tokenString and returns the claims it carries.
func (c *Codec) Verify(_ context.Context, tokenString string) (*core.Claims, error) {
	if err := codec.CheckTokenFormat(tokenString); err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var wire sessionClaims
	if _, err := jwt.ParseWithClaims(tokenString, &wire, c.keyFunc, opts...); err != nil {
		return nil, classify(err)
	}

	claims := &core.Claims{Subject: wire.Subject}
	if claims.Subject == "" {
		return nil, core.NewValidationError(core.ErrorCodeInvalidClaims, "subject claim is missing", nil)
	}

	if wire.ScopeContext != nil {
		scope, ok := wire.ScopeContext.(string)
		if !ok {
			return nil, core.NewValidationError(
				core.ErrorCodeInvalidClaims,
				"scope context claim must be a string",
				fmt.Errorf("got %T", wire.ScopeContext),
			)
		}
		claims.ScopeContext = scope
	}

	return claims, nil
}

func (c *Codec) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("%w: expected %q but token specified %q", errUnexpectedAlgorithm, c.method.Alg(), token.Method.Alg())
	}
	return c.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, errUnexpectedAlgorithm):
		return core.NewValidationError(core.ErrorCodeInvalidAlgorithm, "signing method is invalid", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "could not parse the token", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return core.NewValidationError(core.ErrorCodeInvalidSignature, "could not verify the token signature", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return core.NewValidationError(core.ErrorCodeTokenExpired, "token has expired", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return core.NewValidationError(core.ErrorCodeTokenNotYetValid, "token is not valid yet", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return core.NewValidationError(core.ErrorCodeInvalidIssuer, "issuer is invalid", err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return core.NewValidationError(core.ErrorCodeInvalidClaims, "required claim is missing", err)
	default:
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "could not parse the token", err)
	}
}
