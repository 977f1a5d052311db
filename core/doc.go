/*
Package core provides framework-agnostic session logic that can be used
across different transport layers (HTTP, Gin, Echo, gRPC).

The Manager type owns the session lifecycle without depending on any
specific transport. Cookie changes are returned as Directive values which
the adapters apply to their own response types.

# Architecture

	┌─────────────────────────────────────────────┐
	│         Transport Adapters                  │
	│  (net/http, Gin, Echo, gRPC)                │
	└────────────────┬────────────────────────────┘
	                 │ token in / Directive out
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Manager (THIS PACKAGE)             │
	│  • Establish  -> set Directive              │
	│  • Destroy    -> remove Directive           │
	│  • Resolve    -> Identity | ErrUnauthorized │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Codec                              │
	│  (token signing & verification)             │
	└─────────────────────────────────────────────┘

# Basic Usage

	tokenCodec, err := codec.New(codec.WithSecret(secret))
	if err != nil {
	    log.Fatal(err)
	}

	manager, err := core.New(
	    core.WithCodec(tokenCodec),
	    core.WithLogger(slog.Default()),
	)
	if err != nil {
	    log.Fatal(err)
	}

	// Login
	directive, err := manager.Establish(ctx, core.Claims{Subject: "user-1"})

	// Protected request
	identity, err := manager.Resolve(ctx, cookieValue)
	if errors.Is(err, core.ErrUnauthorized) {
	    // respond 401
	}

	// Logout
	if directive, ok := manager.Destroy(cookieValue); ok {
	    // apply directive
	}

# Errors

Resolve failures always match ErrUnauthorized. The codec's *ValidationError
stays in the chain so that its Code can be logged:

	if errors.Is(err, core.ErrUnauthorized) {
	    log.Printf("session rejected: %s", core.ErrorCode(err))
	}

ErrCookieUnavailable is reported by adapters when the response can no longer
carry a Set-Cookie header.
*/
package core
