package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-session-middleware/core"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New(WithSecret([]byte("secret")))
		require.NoError(t, err)
		assert.Equal(t, HS256, c.signatureAlgorithm)
		assert.Equal(t, core.DefaultSessionTTL, c.ttl)
		assert.Empty(t, c.issuer)
		assert.Zero(t, c.allowedClockSkew)
	})

	t.Run("secret is required", func(t *testing.T) {
		c, err := New()
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrSecretRequired)
	})

	t.Run("option errors are wrapped", func(t *testing.T) {
		c, err := New(WithSecret([]byte("secret")), WithTTL(0))
		assert.Nil(t, c)
		assert.EqualError(t, err, "invalid option: ttl must be positive")
	})
}

func TestOptions(t *testing.T) {
	t.Run("WithSecret", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			c := &Codec{}
			secret := []byte("secret")
			assert.NoError(t, WithSecret(secret)(c))
			secret[0] = 'X'
			assert.Equal(t, []byte("secret"), c.secret, "secret must be copied")
		})

		t.Run("empty", func(t *testing.T) {
			assert.ErrorIs(t, WithSecret(nil)(&Codec{}), ErrSecretRequired)
		})
	})

	t.Run("WithAlgorithm", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			c := &Codec{}
			assert.NoError(t, WithAlgorithm(HS384)(c))
			assert.Equal(t, HS384, c.signatureAlgorithm)
		})

		t.Run("unsupported", func(t *testing.T) {
			err := WithAlgorithm("RS256")(&Codec{})
			assert.EqualError(t, err, "unsupported signature algorithm: RS256")
		})
	})

	t.Run("WithTTL", func(t *testing.T) {
		c := &Codec{}
		assert.NoError(t, WithTTL(time.Hour)(c))
		assert.Equal(t, time.Hour, c.ttl)
		assert.Error(t, WithTTL(-time.Hour)(c))
	})

	t.Run("WithIssuer", func(t *testing.T) {
		c := &Codec{}
		assert.NoError(t, WithIssuer("issuer")(c))
		assert.Equal(t, "issuer", c.issuer)
		assert.Error(t, WithIssuer("")(c))
	})

	t.Run("WithAllowedClockSkew", func(t *testing.T) {
		c := &Codec{}
		assert.NoError(t, WithAllowedClockSkew(time.Minute)(c))
		assert.Equal(t, time.Minute, c.allowedClockSkew)
		assert.Error(t, WithAllowedClockSkew(-time.Minute)(c))
	})

	t.Run("WithClock", func(t *testing.T) {
		c := &Codec{}
		fixed := time.Unix(42, 0)
		assert.NoError(t, WithClock(func() time.Time { return fixed })(c))
		assert.Equal(t, fixed, c.now())
		assert.ErrorIs(t, WithClock(nil)(c), ErrClockNil)
	})
}
