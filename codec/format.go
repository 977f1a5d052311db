package codec

import (
	"strings"

	"github.com/auth0/go-session-middleware/core"
)

// MaxTokenSize is the largest token Verify will parse. Browsers cap a cookie
// at about 4KB, so anything longer did not come from Sign.
const MaxTokenSize = 4096

// CheckTokenFormat rejects strings that cannot be a compact JWS before they
// reach a parser: empty input, oversized input and anything other than
// three dot-separated segments.
func CheckTokenFormat(token string) error {
	if token == "" {
		return core.NewValidationError(core.ErrorCodeTokenMissing, "token is missing", nil)
	}
	if len(token) > MaxTokenSize {
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "token exceeds maximum size", nil)
	}
	if strings.Count(token, ".") != 2 {
		return core.NewValidationError(core.ErrorCodeTokenMalformed, "token is not a compact JWS", nil)
	}
	return nil
}
