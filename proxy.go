package sessionmiddleware

import (
	"net/http"
	"strings"
)

// TrustedProxyConfig defines which reverse proxy headers to trust when
// deciding whether the client connection used HTTPS. The answer drives the
// Secure attribute of the session cookie in core.SecureAuto mode.
//
// SECURITY WARNING: Only enable when behind a trusted reverse proxy that
// strips client-provided forwarded headers.
//
// A nil config trusts no header: only r.TLS is consulted. RFC 7239 Forwarded
// takes precedence over X-Forwarded-Proto when both are enabled, and the
// leftmost value of a multi-proxy chain is used.
type TrustedProxyConfig struct {
	// TrustXForwardedProto enables the X-Forwarded-Proto header.
	TrustXForwardedProto bool

	// TrustForwarded enables the RFC 7239 Forwarded header.
	TrustForwarded bool
}

// WithTrustedProxies configures trusted proxy headers for HTTPS detection.
//
// Example:
//
//	middleware, err := sessionmiddleware.New(
//	    sessionmiddleware.WithCodec(tokenCodec),
//	    sessionmiddleware.WithTrustedProxies(&sessionmiddleware.TrustedProxyConfig{
//	        TrustXForwardedProto: true,
//	    }),
//	)
func WithTrustedProxies(config *TrustedProxyConfig) Option {
	return func(m *SessionMiddleware) error {
		if config == nil {
			return nil
		}
		m.trustedProxies = config
		return nil
	}
}

// WithStandardProxy trusts X-Forwarded-Proto, as set by Nginx, Apache or
// HAProxy.
func WithStandardProxy() Option {
	return WithTrustedProxies(&TrustedProxyConfig{
		TrustXForwardedProto: true,
	})
}

// WithRFC7239Proxy trusts the structured RFC 7239 Forwarded header.
func WithRFC7239Proxy() Option {
	return WithTrustedProxies(&TrustedProxyConfig{
		TrustForwarded: true,
	})
}

// IsSecureRequest reports whether the client reached us over HTTPS. A nil
// config only consults r.TLS.
func (config *TrustedProxyConfig) IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if config == nil {
		return false
	}

	if config.TrustForwarded {
		if forwarded := r.Header.Get("Forwarded"); forwarded != "" {
			if proto := parseForwardedProto(forwarded); proto != "" {
				return strings.EqualFold(proto, "https")
			}
		}
	}

	if config.TrustXForwardedProto {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			return strings.EqualFold(getLeftmost(proto), "https")
		}
	}

	return false
}

// getLeftmost extracts the leftmost value from a comma-separated header.
// The leftmost value is closest to the client.
func getLeftmost(header string) string {
	parts := strings.Split(header, ",")
	return strings.TrimSpace(parts[0])
}

// parseForwardedProto returns the proto parameter of the leftmost entry of
// an RFC 7239 Forwarded header, e.g. "for=192.0.2.60;proto=https".
func parseForwardedProto(forwarded string) string {
	entry := getLeftmost(forwarded)

	for _, part := range strings.Split(entry, ";") {
		part = strings.TrimSpace(part)
		if len(part) > len("proto=") && strings.EqualFold(part[:len("proto=")], "proto=") {
			return strings.Trim(part[len("proto="):], `"`)
		}
	}

	return ""
}
