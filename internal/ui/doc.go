// Package ui implements an interactive terminal mirror of the player page using bubbletea's Elm architecture.
//
// The (view) [Model] reads a snapshot of the mirrored [page.Page] on every change: the now
// playing fragment, volume and position controls, the sortable queue, the search query and the
// notification stack. Key presses are sent to the player server through a [Player]; list
// reordering goes through the page's sortable binder so the new order is persisted the same way
// a drag in the browser would be.
//
// Terminal focus stands in for page visibility: [tea.FocusMsg] and [tea.BlurMsg] are forwarded
// to the stream reconciler, which reconnects and resynchronizes when focus returns.
//
// Keyboard navigation uses vim-style bindings (j/k, J/K, /, enter, esc, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
