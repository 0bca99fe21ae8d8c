// Package stream owns the server-push connection and routes its events to the page.
//
// A [Transport] publishes [models.Message] values on a channel. [Client] runs one
// dispatch goroutine per connection that consumes them in delivery order and calls
// the handler registered for each [models.Kind]:
//
//	reload                      end the connection, then reload the page
//	status, tracklist           refresh subscribed fragments
//	volume, position            write straight into the bound controls
//	error, warn, success, info  push a notification
//
// [Client.Connect] always replaces the current connection and [Client.Teardown] is
// safe to call at any time. [Reconciler] reconnects and resynchronizes when the page
// becomes visible again.
//
// [SSETransport] implements Transport over text/event-stream with github.com/r3labs/sse,
// which reconnects with exponential backoff on its own.
package stream
