/*
Package sessionmiddleware provides cookie-based session middleware for net/http.

A session is a signed token (a JWT) stored in an HttpOnly cookie named "auth".
The middleware attaches a Session to every request; handlers use it to
establish a session at login, destroy it at logout and resolve the current
user everywhere else. No session state is kept on the server. The package is
the net/http adapter of the Core-Adapter pattern: the framework-agnostic
logic lives in package core, and framework/gin, framework/echo and
integrations/grpc are the other adapters.

# Quick Start

	import (
	    sessionmiddleware "github.com/auth0/go-session-middleware"
	    "github.com/auth0/go-session-middleware/codec"
	    "github.com/auth0/go-session-middleware/core"
	)

	func main() {
	    tokenCodec, err := codec.New(
	        codec.WithSecret([]byte(os.Getenv("SESSION_SECRET"))),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := sessionmiddleware.New(
	        sessionmiddleware.WithCodec(tokenCodec),
	        sessionmiddleware.WithExclusionUrls([]string{"/login"}),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.ListenAndServe(":8080", middleware.RequireSession(mux))
	}

# Establishing and Destroying Sessions

	func login(w http.ResponseWriter, r *http.Request) {
	    // ... authenticate the user ...
	    session := sessionmiddleware.FromContext(r.Context())
	    if err := session.EstablishSession(core.Claims{Subject: user.ID}); err != nil {
	        http.Error(w, "could not sign in", http.StatusInternalServerError)
	        return
	    }
	    w.WriteHeader(http.StatusNoContent)
	}

	func logout(w http.ResponseWriter, r *http.Request) {
	    sessionmiddleware.FromContext(r.Context()).DestroySession()
	    w.WriteHeader(http.StatusNoContent)
	}

EstablishSession must run before the response is written: once headers are
sent it returns core.ErrCookieUnavailable. DestroySession never fails and is
a no-op when the request carried no session cookie.

# Resolving the Current User

	func me(w http.ResponseWriter, r *http.Request) {
	    identity, err := sessionmiddleware.CurrentUser(r.Context())
	    if err != nil {
	        http.Error(w, "unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "hello %s", identity.UserID)
	}

Behind RequireSession the identity is already resolved. Behind Handler it is
resolved on first use and cached for the rest of the request.

# Error Handling

RequireSession hands failures to the ErrorHandler. DefaultErrorHandler answers:

  - 401 {"code":"unauthorized",...} for core.ErrUnauthorized
  - 500 {"code":"cookie_unavailable",...} for core.ErrCookieUnavailable
  - 500 {"code":"internal_error",...} otherwise

Why verification failed (expired, bad signature, ...) is logged but never
sent to the client. Use core.ErrorCode(err) in a custom handler to inspect it.

# Secure Cookies

With the default core.SecureAuto mode the cookie is marked Secure when the
request arrived over TLS. Behind a TLS-terminating proxy, enable
WithStandardProxy or WithRFC7239Proxy so X-Forwarded-Proto or Forwarded is
trusted.

# Observability

WithLogger accepts a *slog.Logger or one of the NewLogrusLogger,
NewZerologLogger and NewZapLogger adapters. WithTracerProvider and WithMetrics
enable OpenTelemetry spans and Prometheus counters for every session
operation.
*/
package sessionmiddleware
