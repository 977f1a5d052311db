package core

import (
	"net/http"
	"time"
)

const (
	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "auth"

	// DefaultCookiePath scopes the session cookie to the whole site.
	DefaultCookiePath = "/"

	// DefaultSessionTTL is the validity window of a session token and the
	// MaxAge of its cookie.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// SecureMode controls the Secure attribute of the session cookie.
type SecureMode int

const (
	// SecureAuto marks the cookie Secure when the request arrived over HTTPS.
	SecureAuto SecureMode = iota
	// SecureAlways always marks the cookie Secure.
	SecureAlways
	// SecureNever never marks the cookie Secure.
	SecureNever
)

// CookieConfig describes the attributes of the session cookie.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   time.Duration
	SameSite http.SameSite
	Secure   SecureMode
}

// DefaultCookieConfig returns the cookie attributes used when none are configured.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     DefaultCookieName,
		Path:     DefaultCookiePath,
		MaxAge:   DefaultSessionTTL,
		SameSite: http.SameSiteLaxMode,
		Secure:   SecureAuto,
	}
}

func (c CookieConfig) validate() error {
	if c.Name == "" {
		return NewValidationError(ErrorCodeConfigInvalid, "cookie name cannot be empty", nil)
	}
	if c.MaxAge < time.Second {
		return NewValidationError(ErrorCodeConfigInvalid, "cookie max age must be at least one second", nil)
	}
	return nil
}

// Action is what a Directive asks the transport to do.
type Action int

const (
	// ActionSet writes the session cookie.
	ActionSet Action = iota
	// ActionRemove expires the session cookie on the client.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Directive is a cookie mutation produced by Establish or Destroy. Transports
// apply it to their own response type. HttpOnly is always true.
type Directive struct {
	Action   Action
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int // seconds; negative means delete now
	SameSite http.SameSite
	Secure   SecureMode
}

// HTTPCookie renders the directive as an *http.Cookie. secureRequest tells
// whether the current request arrived over HTTPS and is only consulted in
// SecureAuto mode.
func (d Directive) HTTPCookie(secureRequest bool) *http.Cookie {
	return &http.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     d.Path,
		Domain:   d.Domain,
		MaxAge:   d.MaxAge,
		HttpOnly: true,
		Secure:   d.IsSecure(secureRequest),
		SameSite: d.SameSite,
	}
}

// IsSecure resolves the Secure attribute for the current request.
func (d Directive) IsSecure(secureRequest bool) bool {
	switch d.Secure {
	case SecureAlways:
		return true
	case SecureNever:
		return false
	default:
		return secureRequest
	}
}
