package codec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/auth0/go-session-middleware/core"
)

// Signature algorithms
const (
	HS256 = SignatureAlgorithm("HS256") // HMAC using SHA-256
	HS384 = SignatureAlgorithm("HS384") // HMAC using SHA-384
	HS512 = SignatureAlgorithm("HS512") // HMAC using SHA-512
)

// ScopeContextClaim is the private claim carrying core.Claims.ScopeContext.
const ScopeContextClaim = "scope_context"

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	HS256: true,
	HS384: true,
	HS512: true,
}

// Codec signs and verifies session tokens using the lestrrat-go/jwx package.
// It is immutable after New and safe for concurrent use.
type Codec struct {
	secret             []byte             // Required.
	signatureAlgorithm SignatureAlgorithm // Defaults to HS256.
	ttl                time.Duration      // Defaults to core.DefaultSessionTTL.
	issuer             string             // Optional.
	allowedClockSkew   time.Duration      // Optional.
	now                func() time.Time   // Defaults to time.Now.
}

var _ core.Codec = (*Codec)(nil)

// New sets up a new Codec. WithSecret is required.
//
// Example:
//
//	c, err := codec.New(
//	    codec.WithSecret([]byte(os.Getenv("SESSION_SECRET"))),
//	    codec.WithIssuer("my-app"),
//	)
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		signatureAlgorithm: HS256,
		ttl:                core.DefaultSessionTTL,
		now:                time.Now,
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

// Sign embeds claims, a fresh jti and the validity window into a signed token.
func (c *Codec) Sign(_ context.Context, claims core.Claims) (string, error) {
	if err := claims.Validate(); err != nil {
		return "", err
	}

	now := c.now()
	builder := jwt.NewBuilder().
		Subject(claims.Subject).
		IssuedAt(now).
		Expiration(now.Add(c.ttl)).
		JwtID(uuid.NewString())
	if c.issuer != "" {
		builder = builder.Issuer(c.issuer)
	}
	if claims.ScopeContext != "" {
		builder = builder.Claim(ScopeContextClaim, claims.ScopeContext)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("could not build the token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.SignatureAlgorithm(c.signatureAlgorithm), c.secret))
	if err != nil {
		return "", fmt.Errorf("could not sign the token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the token signature, algorithm and validity window and
// returns the claims it carries. All failures are *core.ValidationError.
func (c *Codec) Verify(_ context.Context, tokenString string) (*core.Claims, error) {
	if err := CheckTokenFormat(tokenString); err != nil {
		return nil, err
	}
	raw := []byte(tokenString)

	if err := c.validateSigningMethod(raw); err != nil {
		return nil, err
	}

	token, err := jwt.Parse(
		raw,
		jwt.WithKey(jwa.SignatureAlgorithm(c.signatureAlgorithm), c.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(c.now)),
		jwt.WithAcceptableSkew(c.allowedClockSkew),
	)
	if err != nil {
		return nil, c.classify(raw, err)
	}

	return claimsFromToken(token, c.issuer)
}

func (c *Codec) validateSigningMethod(raw []byte) error {
	msg, err := jws.Parse(raw)
	if err != nil {
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "could not parse the token", err)
	}

	signatures := msg.Signatures()
	if len(signatures) != 1 {
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "token must carry exactly one signature", nil)
	}

	alg := signatures[0].ProtectedHeaders().Algorithm()
	if string(alg) != string(c.signatureAlgorithm) {
		return core.NewValidationError(
			core.ErrorCodeInvalidAlgorithm,
			"signing method is invalid",
			fmt.Errorf("expected %q signing algorithm but token specified %q", c.signatureAlgorithm, alg),
		)
	}

	return nil
}

// classify maps a jwt.Parse failure to a ValidationError code.
func (c *Codec) classify(raw []byte, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired()):
		return core.NewValidationError(core.ErrorCodeTokenExpired, "token has expired", err)
	case errors.Is(err, jwt.ErrTokenNotYetValid()):
		return core.NewValidationError(core.ErrorCodeTokenNotYetValid, "token is not valid yet", err)
	case jwt.IsValidationError(err):
		return core.NewValidationError(core.ErrorCodeInvalidClaims, "expected claims not validated", err)
	}

	// The token verified structurally without the key, so the key is what failed.
	if _, insecureErr := jwt.Parse(raw, jwt.WithVerify(false), jwt.WithValidate(false)); insecureErr == nil {
		return core.NewValidationError(core.ErrorCodeInvalidSignature, "could not verify the token signature", err)
	}

	return core.NewValidationError(core.ErrorCodeTokenMalformed, "could not parse the token", err)
}

func claimsFromToken(token jwt.Token, issuer string) (*core.Claims, error) {
	if issuer != "" && token.Issuer() != issuer {
		return nil, core.NewValidationError(
			core.ErrorCodeInvalidIssuer,
			"issuer is invalid",
			fmt.Errorf("expected %q but token specified %q", issuer, token.Issuer()),
		)
	}

	if token.Expiration().IsZero() {
		return nil, core.NewValidationError(core.ErrorCodeInvalidClaims, "expiration claim is missing", nil)
	}

	claims := &core.Claims{Subject: token.Subject()}
	if claims.Subject == "" {
		return nil, core.NewValidationError(core.ErrorCodeInvalidClaims, "subject claim is missing", nil)
	}

	if value, ok := token.Get(ScopeContextClaim); ok {
		scope, ok := value.(string)
		if !ok {
			return nil, core.NewValidationError(
				core.ErrorCodeInvalidClaims,
				"scope context claim must be a string",
				fmt.Errorf("got %T", value),
			)
		}
		claims.ScopeContext = scope
	}

	return claims, nil
}
