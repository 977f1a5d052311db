package codec

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for codec configuration.
var (
	ErrSecretRequired = errors.New("secret is required (use WithSecret)")
	ErrClockNil       = errors.New("clock cannot be nil")
)

// Option is how options for the Codec are set up.
// Options return errors to enable validation during construction.
type Option func(*Codec) error

// WithSecret sets the HMAC secret used to sign and verify tokens.
// This is a required option.
func WithSecret(secret []byte) Option {
	return func(c *Codec) error {
		if len(secret) == 0 {
			return ErrSecretRequired
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithAlgorithm sets the signature algorithm that tokens must use.
//
// Supported algorithms: HS256 (default), HS384, HS512.
func WithAlgorithm(algorithm SignatureAlgorithm) Option {
	return func(c *Codec) error {
		if _, ok := allowedSigningAlgorithms[algorithm]; !ok {
			return fmt.Errorf("unsupported signature algorithm: %s", algorithm)
		}
		c.signatureAlgorithm = algorithm
		return nil
	}
}

// WithTTL sets the validity window embedded in every token.
//
// Default: 7 days. Keep it equal to the cookie MaxAge.
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

// WithAllowedClockSkew sets the allowed clock skew for time-based claims.
//
// If not set, the default is 0 (no clock skew allowed).
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(c *Codec) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		c.allowedClockSkew = skew
		return nil
	}
}

// WithClock overrides the time source used for iat, exp and their validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) error {
		if now == nil {
			return ErrClockNil
		}
		c.now = now
		return nil
	}
}
