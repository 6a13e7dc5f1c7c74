// Package server provides the loopback HTTP listener that captures the
// OAuth2 authorization redirect.
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
// [CallbackHandler] receives the authorization redirect exactly once,
// verifies the anti-forgery state token, and delivers the authorization
// code through a channel. A state mismatch or a provider error redirect
// settles the channel with an error; later requests get HTTP 400. The code
// exchange is deliberately left to the auth manager so that a rejected
// state and a failed exchange remain distinct failures.
//
// The listener exists only for the duration of one authorization attempt:
// the auth manager starts it, blocks on [CallbackHandler.Result], and shuts
// it down.
package server
