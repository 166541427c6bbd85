// Package server provides the loopback HTTP listener that completes the PKCE
// authorization flow, plus small routing and middleware infrastructure.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives the provider redirect after the user consents:
// it validates the state parameter (CSRF protection), hands the authorization
// code to [auth.Flow.Complete], and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs `spx auth login`, a temporary HTTP server starts on the
// configured loopback address, handles the single callback, and shuts down
// after delivering the result.
package server
