package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("error message includes details", func(t *testing.T) {
		err := NewValidationError(ErrorCodeTokenExpired, "token has expired", errors.New("exp not satisfied"))

		assert.Equal(t, "token has expired: exp not satisfied", err.Error())
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("error message without details", func(t *testing.T) {
		err := NewValidationError(ErrorCodeTokenMissing, "session token is missing", nil)

		assert.Equal(t, "session token is missing", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("only token codes match ErrTokenInvalid", func(t *testing.T) {
		testCases := []struct {
			code string
			want bool
		}{
			{code: ErrorCodeTokenMissing, want: true},
			{code: ErrorCodeTokenMalformed, want: true},
			{code: ErrorCodeTokenExpired, want: true},
			{code: ErrorCodeTokenNotYetValid, want: true},
			{code: ErrorCodeInvalidSignature, want: true},
			{code: ErrorCodeInvalidAlgorithm, want: true},
			{code: ErrorCodeInvalidIssuer, want: true},
			{code: ErrorCodeInvalidClaims, want: true},
			{code: ErrorCodeConfigInvalid, want: false},
			{code: ErrorCodeCodecNotSet, want: false},
		}

		for _, testCase := range testCases {
			err := NewValidationError(testCase.code, "message", nil)
			assert.Equal(t, testCase.want, errors.Is(err, ErrTokenInvalid), testCase.code)
		}
	})

	t.Run("error code survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("verify: %w", NewValidationError(ErrorCodeInvalidSignature, "bad signature", nil))

		assert.Equal(t, ErrorCodeInvalidSignature, ErrorCode(err))
		assert.Empty(t, ErrorCode(errors.New("plain")))
	})
}

func TestUnauthorized(t *testing.T) {
	cause := NewValidationError(ErrorCodeTokenExpired, "token has expired", nil)
	err := Unauthorized(cause)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrCookieUnavailable)
	assert.Equal(t, "unauthorized: token has expired", err.Error())
	assert.Equal(t, "unauthorized", Unauthorized(nil).Error())

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, ErrorCodeTokenExpired, validationErr.Code)
}
