// Package services talks to the player's web server over HTTP.
//
// [PageService] is the only client. It loads the page document and the fragments
// behind hx-get attributes (implementing [dom.Loader]) and sends the player commands
// the page's buttons and sliders issue.
//
// Fragment and page loads send "HX-Request: true" so the server renders partials the way
// it does for htmx, and are throttled by a [rate.Limiter] so a burst of events cannot turn
// into a burst of requests.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrFragmentLoad] : a page or fragment request returned a non-2xx status
//   - [shared.ErrAPIRequest] : a player command failed
//   - [shared.ErrServiceUnavailable] : the server could not be reached
package services
