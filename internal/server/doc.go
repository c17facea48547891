// Package server receives the end of a browser sign-in for terminal clients.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] implements it on [http.ServeMux] with "METHOD /path" patterns.
// [LogRequests] is the only middleware it currently carries.
//
// # Loopback Sign-In
//
// A terminal cannot receive the auth_token cookie the dashboard API sets in the browser.
// Instead the client starts a [LoopbackLogin] on 127.0.0.1, passes its [LoopbackLogin.ReturnTo]
// URL to GET /api/auth/login, and opens the returned Discord URL. After the OAuth callback the
// API redirects the browser to the return URL with the token in the query.
//
// [CallbackHandler] validates the random state it was created with, accepts a single callback,
// and delivers the token over a channel. [SignIn] wraps the whole sequence.
package server
