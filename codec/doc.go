/*
Package codec signs and verifies session tokens using the lestrrat-go/jwx v2
library.

A token is a compact JWS (JWT) carrying the session subject, an optional
scope context, a random jti and the validity window:

	{
	  "sub": "user-1",
	  "scope_context": "org-42",
	  "iat": 1700000000,
	  "exp": 1700604800,
	  "jti": "3f0c..."
	}

# Usage

	c, err := codec.New(
	    codec.WithSecret(secret),
	    codec.WithIssuer("my-app"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	token, err := c.Sign(ctx, core.Claims{Subject: "user-1"})
	claims, err := c.Verify(ctx, token)

# Verification

Verify rejects, with a *core.ValidationError matching core.ErrTokenInvalid:

  - empty tokens (token_missing)
  - tokens that are not a single-signature JWS (token_malformed)
  - tokens signed with another algorithm (invalid_algorithm)
  - tokens whose signature does not match the secret (invalid_signature)
  - expired or not-yet-valid tokens (token_expired, token_not_yet_valid)
  - tokens from another issuer when WithIssuer is set (invalid_issuer)
  - tokens missing exp or sub, or with a non-string scope_context (invalid_claims)

Only HMAC algorithms are supported: the same process signs and verifies.
*/
package codec
