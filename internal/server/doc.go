// Package server exposes the mirrored page over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [Middleware] wraps handlers
// in reverse order (last added executes first), following the standard Go pattern. The
// [BasicRouter] implementation uses [http.ServeMux] method patterns, so a request with the wrong
// method gets a 405 from the mux itself.
//
// # Mirror Handler
//
// [MirrorHandler] renders the mirrored document as it currently stands and reports whether the
// event stream is live. It is what `livesync serve` mounts, letting a browser look at the state the
// client has reconstructed from pushed events.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and
// adds routes, allowing handlers to register multiple routes to encapsulate route definitions
// within the implementation.
package server
