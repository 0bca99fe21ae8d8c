// Package page binds server state to elements of a [dom.Document].
//
// Components:
//   - [Fragments] : refreshes every element subscribed to an event kind
//   - [Toasts] : prepends notification fragments into the toast container
//   - [Controls] : writes volume and position payloads straight into inputs
//   - [QueryState] : mirrors the search query between session storage, the URL and tab links
//   - [Sortables] : attaches drag reordering to sortable lists as fragments load
//
// [Page] wires them to one [dom.Tree] and loads the document from the server.
//
// Missing elements are never errors here: an update aimed at a control the current
// page does not render is dropped.
package page
