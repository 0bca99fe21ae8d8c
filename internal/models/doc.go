// Package models defines the values that flow between the event stream and the page.
//
// The package contains three groups of types:
//
// 1. Stream vocabulary
//   - [Kind] : named server-sent event kinds, see [Kinds]
//   - [Message] : one event as delivered by a transport
//
// 2. Notification vocabulary
//   - [Severity] : error, warn, success or info
//
// 3. Navigation vocabulary
//   - [Tab] : search result tabs whose links carry the current query
package models
