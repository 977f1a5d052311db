// Package config loads session settings from the environment using koanf.
// Compiled defaults apply first, then SESSION_* variables override them.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/auth0/go-session-middleware/codec"
	"github.com/auth0/go-session-middleware/core"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SESSION_"

// ErrSecretRequired is returned by Load when SESSION_SECRET is unset.
var ErrSecretRequired = errors.New("config: SESSION_SECRET is required")

// Config holds the session settings of a service.
type Config struct {
	// Signing secret. Required.
	Secret    string        `koanf:"secret"`
	Algorithm string        `koanf:"algorithm"`
	TTL       time.Duration `koanf:"ttl"`
	Issuer    string        `koanf:"issuer"`
	ClockSkew time.Duration `koanf:"clock_skew"`

	CookieName     string `koanf:"cookie_name"`
	CookiePath     string `koanf:"cookie_path"`
	CookieDomain   string `koanf:"cookie_domain"`
	CookieSecure   string `koanf:"cookie_secure"`   // auto, always or never
	CookieSameSite string `koanf:"cookie_samesite"` // lax, strict, none or default

	LogLevel string `koanf:"log_level"`
	Addr     string `koanf:"addr"`
}

// defaults returns a Config with compiled default values.
func defaults() *Config {
	return &Config{
		Algorithm:      string(codec.HS256),
		TTL:            core.DefaultSessionTTL,
		CookieName:     core.DefaultCookieName,
		CookiePath:     core.DefaultCookiePath,
		CookieSecure:   "auto",
		CookieSameSite: "lax",
		LogLevel:       "info",
		Addr:           ":3000",
	}
}

// Load reads SESSION_* environment variables over the compiled defaults,
// e.g. SESSION_COOKIE_NAME sets CookieName and SESSION_TTL=24h sets TTL.
func Load() (*Config, error) {
	return load(env.Provider(EnvPrefix, ".", envKey))
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func load(provider koanf.Provider) (*Config, error) {
	k := koanf.New(".")

	cfg := defaults()

	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can build a codec and a manager.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrSecretRequired
	}
	if c.TTL < time.Second {
		return fmt.Errorf("config: ttl must be at least 1s, got %s", c.TTL)
	}
	switch codec.SignatureAlgorithm(strings.ToUpper(c.Algorithm)) {
	case codec.HS256, codec.HS384, codec.HS512:
	default:
		return fmt.Errorf("config: unsupported algorithm %q", c.Algorithm)
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("config: clock skew cannot be negative, got %s", c.ClockSkew)
	}
	if _, err := parseSecureMode(c.CookieSecure); err != nil {
		return err
	}
	if _, err := parseSameSite(c.CookieSameSite); err != nil {
		return err
	}
	return nil
}

// CodecOptions returns the options for codec.New. The cookie MaxAge and the
// token TTL share the TTL setting.
func (c *Config) CodecOptions() []codec.Option {
	opts := []codec.Option{
		codec.WithSecret([]byte(c.Secret)),
		codec.WithAlgorithm(codec.SignatureAlgorithm(strings.ToUpper(c.Algorithm))),
		codec.WithTTL(c.TTL),
		codec.WithAllowedClockSkew(c.ClockSkew),
	}
	if c.Issuer != "" {
		opts = append(opts, codec.WithIssuer(c.Issuer))
	}
	return opts
}

// CookieConfig returns the session cookie attributes. Call Validate first;
// unknown secure and same-site values fall back to their defaults.
func (c *Config) CookieConfig() core.CookieConfig {
	secure, _ := parseSecureMode(c.CookieSecure)
	sameSite, _ := parseSameSite(c.CookieSameSite)

	return core.CookieConfig{
		Name:     c.CookieName,
		Path:     c.CookiePath,
		Domain:   c.CookieDomain,
		MaxAge:   c.TTL,
		SameSite: sameSite,
		Secure:   secure,
	}
}

func parseSecureMode(s string) (core.SecureMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return core.SecureAuto, nil
	case "always", "true":
		return core.SecureAlways, nil
	case "never", "false":
		return core.SecureNever, nil
	default:
		return core.SecureAuto, fmt.Errorf("config: invalid cookie secure mode %q (want auto, always or never)", s)
	}
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	case "default":
		return http.SameSiteDefaultMode, nil
	default:
		return http.SameSiteLaxMode, fmt.Errorf("config: invalid cookie same-site mode %q (want lax, strict, none or default)", s)
	}
}
